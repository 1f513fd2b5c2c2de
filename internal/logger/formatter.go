package logger

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"
)

// lokiPush is the body of POST /loki/api/v1/push.
type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

func buildLogEntry(job, level, message string, attrs []slog.Attr, at time.Time) lokiPush {
	return lokiPush{
		Streams: []lokiStream{{
			Stream: map[string]string{"job": job, "level": level},
			Values: [][2]string{{
				strconv.FormatInt(at.UnixNano(), 10),
				buildLogLine(level, message, attrs, at),
			}},
		}},
	}
}

// buildLogLine renders one record as a flat JSON object; attrs may not shadow
// the level, message or time keys.
func buildLogLine(level, message string, attrs []slog.Attr, at time.Time) string {
	line := make(map[string]any, len(attrs)+3)
	for _, attr := range attrs {
		line[attr.Key] = attr.Value.Resolve().Any()
	}
	line["level"] = level
	line["message"] = message
	line["time"] = at.Format(time.RFC3339)

	b, err := json.Marshal(line)
	if err != nil {
		return `{"level":"` + level + `","message":` + strconv.Quote(message) + `}`
	}
	return string(b)
}
