package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/phambaophuc/bg-remover/pkg/httpclient"
	"go.uber.org/zap"
)

const removePath = "/api/remove"

// RembgSession delegates inference to a rembg server (`rembg s`), which keeps
// the named model loaded on its side.
type RembgSession struct {
	name    string
	baseURL string
	timeout time.Duration
	cli     httpclient.IClient
	logger  *zap.Logger
}

// NewRembgFactory returns a Factory that builds sessions against the rembg
// server at baseURL. Construction fails for unknown models or an unreachable server.
func NewRembgFactory(baseURL string, timeout time.Duration, cli httpclient.IClient, logger *zap.Logger) Factory {
	if cli == nil {
		cli = httpclient.NewHTTPClientWithTimeout(timeout)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(name string) (Session, error) {
		if err := ValidateModel(name); err != nil {
			return nil, err
		}
		s := &RembgSession{
			name:    name,
			baseURL: baseURL,
			timeout: timeout,
			cli:     cli,
			logger:  logger,
		}
		if err := s.ping(context.Background()); err != nil {
			return nil, fmt.Errorf("rembg server %s unavailable: %w", baseURL, err)
		}
		return s, nil
	}
}

func (s *RembgSession) Name() string {
	return s.name
}

/*
	curl -X POST "$REMBG_URL/api/remove" \
	  -F "file=@image.jpg" \
	  -F "model=u2net" \
	  -F "a=true" -F "af=240" -F "ab=10" -F "ae=10"
*/
func (s *RembgSession) Remove(ctx context.Context, data []byte, opts RemoveOptions) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}

	fields := [][2]string{
		{"model", s.name},
		{"a", strconv.FormatBool(opts.AlphaMatting)},
	}
	if opts.AlphaMatting {
		fields = append(fields,
			[2]string{"af", strconv.Itoa(opts.ForegroundThreshold)},
			[2]string{"ab", strconv.Itoa(opts.BackgroundThreshold)},
			[2]string{"ae", strconv.Itoa(opts.ErodeSize)},
		)
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", f[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var out []byte
	reqParam := &httpclient.RequestParam{
		RequestURI: s.baseURL + removePath,
		Method:     http.MethodPost,
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   &out,
		Timeout:    s.timeout,
	}
	if err := s.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("remove background: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("remove background: empty response from engine")
	}

	s.logger.Debug("Engine responded", zap.String("model", s.name), zap.Int("bytes", len(out)))
	return out, nil
}

// ping treats any response below 500 as a live server.
func (s *RembgSession) ping(ctx context.Context) error {
	err := s.cli.DoHTTPRequest(ctx, &httpclient.RequestParam{
		RequestURI: s.baseURL + "/",
		Method:     http.MethodGet,
		Timeout:    10 * time.Second,
	})
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError {
		return nil
	}
	return err
}
