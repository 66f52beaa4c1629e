// package formatter renders audio feature records as CSV or plain text for the command line
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/desertthunder/trackdex/internal/models"
	"github.com/desertthunder/trackdex/internal/shared"
)

// Format names an output encoding accepted by the features command.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// ParseFormat returns the Format for name. Unknown names wrap [shared.ErrInvalidInput].
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatJSON, FormatCSV, FormatText:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want json, csv or text)", shared.ErrInvalidInput, name)
	}
}

var csvHeaders = []string{
	"ID", "Acousticness", "Danceability", "Energy", "Instrumentalness", "Key",
	"Liveness", "Loudness", "Mode", "Speechiness", "Tempo", "Valence",
}

// FeaturesToCSV converts feature records to CSV with one row per track.
func FeaturesToCSV(features []models.AudioFeatures) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, f := range features {
		record := []string{
			f.ID,
			formatFloat(f.Acousticness),
			formatFloat(f.Danceability),
			formatFloat(f.Energy),
			formatFloat(f.Instrumentalness),
			strconv.Itoa(f.Key),
			formatFloat(f.Liveness),
			formatFloat(f.Loudness),
			strconv.Itoa(f.Mode),
			formatFloat(f.Speechiness),
			formatFloat(f.Tempo),
			formatFloat(f.Valence),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// FeaturesToText converts feature records to an aligned, human readable listing.
func FeaturesToText(features []models.AudioFeatures) ([]byte, error) {
	var buf bytes.Buffer

	if len(features) == 0 {
		buf.WriteString("No audio features available\n")
		return buf.Bytes(), nil
	}

	for i, f := range features {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "Track: %s\n", f.ID)
		fmt.Fprintf(&buf, "  Key:   %s (%s)\n", KeyName(f.Key), ModeName(f.Mode))
		fmt.Fprintf(&buf, "  Tempo: %.1f BPM\n", f.Tempo)
		fmt.Fprintf(&buf, "  Loudness: %.2f dB\n", f.Loudness)
		for _, row := range []struct {
			label string
			value float64
		}{
			{"Acousticness", f.Acousticness},
			{"Danceability", f.Danceability},
			{"Energy", f.Energy},
			{"Instrumentalness", f.Instrumentalness},
			{"Liveness", f.Liveness},
			{"Speechiness", f.Speechiness},
			{"Valence", f.Valence},
		} {
			fmt.Fprintf(&buf, "  %-16s %.3f\n", row.label+":", row.value)
		}
	}

	return buf.Bytes(), nil
}

var pitchClasses = []string{"C", "C♯/D♭", "D", "D♯/E♭", "E", "F", "F♯/G♭", "G", "G♯/A♭", "A", "A♯/B♭", "B"}

// KeyName maps a pitch class (0-11) to its note name. -1 and out-of-range values are "unknown".
func KeyName(key int) string {
	if key < 0 || key >= len(pitchClasses) {
		return "unknown"
	}
	return pitchClasses[key]
}

// ModeName maps 1 to major and 0 to minor.
func ModeName(mode int) string {
	switch mode {
	case 1:
		return "major"
	case 0:
		return "minor"
	default:
		return "unknown"
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
