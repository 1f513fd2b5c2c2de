package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

var (
	httpClient = &http.Client{Timeout: 5 * time.Second}

	remoteMu  sync.RWMutex
	remoteURI string
	remoteJob = "electronicos-api"
)

// SetRemote enables pushing every record to a Loki compatible endpoint.
// An empty uri disables remote shipping.
func SetRemote(uri, job string) {
	remoteMu.Lock()
	defer remoteMu.Unlock()
	remoteURI = uri
	if job != "" {
		remoteJob = job
	}
}

func remoteTarget() (string, string) {
	remoteMu.RLock()
	defer remoteMu.RUnlock()
	return remoteURI, remoteJob
}

// sendLog ships the entry in the background and never blocks the caller.
// Failures go to stderr; logging them through the logger would loop.
func sendLog(level, message string, attrs []slog.Attr) {
	uri, job := remoteTarget()
	if uri == "" {
		return
	}
	entry := buildLogEntry(job, level, message, attrs, time.Now())

	go func() {
		payload, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "remote log: marshal: %v\n", err)
			return
		}

		resp, err := httpClient.Post(uri, "application/json", bytes.NewReader(payload))
		if err != nil {
			fmt.Fprintf(os.Stderr, "remote log: send: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			fmt.Fprintf(os.Stderr, "remote log: status %d\n", resp.StatusCode)
		}
	}()
}
