package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"helm/internal/types"
)

func streamDebugEnabled() bool {
	return strings.TrimSpace(os.Getenv("HELM_STREAM_DEBUG")) == "1"
}

var (
	streamLogger     *log.Logger
	streamLoggerOnce sync.Once
)

func streamDebugLogger() *log.Logger {
	if !streamDebugEnabled() {
		return nil
	}
	streamLoggerOnce.Do(func() {
		path := ""
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			path = filepath.Join(home, ".helm", "ui-stream.log")
		}
		if path == "" {
			path = filepath.Join(os.TempDir(), "helm-ui-stream.log")
		}
		_ = os.MkdirAll(filepath.Dir(path), 0o700)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			streamLogger = log.New(os.Stderr, "ui-stream ", log.LstdFlags)
			return
		}
		streamLogger = log.New(file, "ui-stream ", log.LstdFlags)
	})
	return streamLogger
}

func streamLogf(format string, args ...any) {
	logger := streamDebugLogger()
	if logger == nil {
		return
	}
	logger.Printf(format, args...)
}

// EventStream subscribes to the task event feed for a session. Events
// arrive on the returned channel until the stream ends or the returned
// cancel function is called; the channel is closed either way.
func (c *Client) EventStream(ctx context.Context, sessionID string) (<-chan types.TaskEvent, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	url := fmt.Sprintf("%s/v1/sessions/%s/events?follow=1", c.baseURL, sessionID)
	if streamDebugEnabled() {
		streamLogf("stream events open session=%s url=%s", sessionID, url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "text/event-stream")

	httpClient := &http.Client{}
	resp, err := httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		cancel()
		if streamDebugEnabled() {
			streamLogf("stream events error session=%s status=%d", sessionID, resp.StatusCode)
		}
		return nil, nil, decodeAPIError(resp)
	}

	ch := make(chan types.TaskEvent, 256)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		start := time.Now()
		count := 0
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		var dataLines []string

		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				if len(dataLines) == 0 {
					continue
				}
				payload := strings.Join(dataLines, "\n")
				dataLines = dataLines[:0]
				var event types.TaskEvent
				if err := json.Unmarshal([]byte(payload), &event); err == nil {
					select {
					case ch <- event:
					default:
					}
					count++
					if count == 1 && streamDebugEnabled() {
						streamLogf("stream events first session=%s kind=%s", sessionID, event.Kind)
					}
				}
				continue
			}
			if strings.HasPrefix(line, "data:") {
				dataLines = append(dataLines, strings.TrimSpace(line[len("data:"):]))
			}
		}
		if err := scanner.Err(); err != nil && streamDebugEnabled() {
			streamLogf("stream events scan error session=%s err=%v", sessionID, err)
		}
		if streamDebugEnabled() {
			streamLogf("stream events close session=%s count=%d dur=%s", sessionID, count, time.Since(start))
		}
	}()

	return ch, cancel, nil
}
