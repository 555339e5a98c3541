package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sandwichcheck/config"
)

// HttpClient is shared by every JSON collaborator. Tests may swap it.
var HttpClient = &http.Client{Timeout: config.DefaultTimeout}

// HTTPStatusError is returned for any non-200 response.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("request returned status %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), body)
}

func GetUrlResponse(ctx context.Context, reqUrl string, params map[string]string, result any, logger *slog.Logger) error {
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		reqUrl += "?" + q.Encode()
	}

	if err := doGet(ctx, reqUrl, result); err != nil {
		logger.Debug("GET request failed", "url", RedactApiKey(reqUrl), "err", err)
		return err
	}
	return nil
}

func PostUrlResponse(ctx context.Context, reqUrl string, body any, result any, logger *slog.Logger) error {
	if err := doPost(ctx, reqUrl, body, result); err != nil {
		logger.Debug("POST request failed", "url", RedactApiKey(reqUrl), "err", err)
		return err
	}
	return nil
}

func doGet(ctx context.Context, reqUrl string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return fmt.Errorf("failed to create GET request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return do(req, result)
}

func doPost(ctx context.Context, reqUrl string, body any, result any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal POST body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqUrl, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(req, result)
}

func do(req *http.Request, result any) error {
	resp, err := HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request error: %w", req.Method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyResp, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(bodyResp)}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("failed to stream and unmarshal %s response: %w", req.Method, err)
	}
	return nil
}

// RedactApiKey hides the api-key query parameter before a URL reaches the logs.
func RedactApiKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get("api-key") == "" {
		return raw
	}
	q.Set("api-key", "***")
	u.RawQuery = q.Encode()
	return u.String()
}
