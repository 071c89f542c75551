package logx

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/requester/middleware"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// RoundTripperOpts contains options for client logger.
type RoundTripperOpts struct {
	Level             slog.Level
	SecretHeaders     []string
	SecretQueryParams []string
	// SecretBodyPaths lists url paths whose response bodies are never logged.
	SecretBodyPaths []string
}

// LoggingRoundTripper logs every client request.
func LoggingRoundTripper(lg *slog.Logger, opts RoundTripperOpts) middleware.RoundTripperHandler {
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			le := logEntry{}

			le.Request.URL = maskQuery(req.URL, opts.SecretQueryParams)
			le.Request.Method = req.Method
			le.Request.Headers = maskHeaders(req.Header, opts.SecretHeaders)
			req.Body, le.Request.RequestBody = copyAndTrim(req.Body)

			lg.LogAttrs(req.Context(), opts.Level, "request sent", slog.Any("request", le.Request))

			start := time.Now()
			resp, err := next.RoundTrip(req)
			le.Elapsed = time.Since(start)
			le.Error = err

			if resp != nil {
				le.Response.Headers = maskHeaders(resp.Header, opts.SecretHeaders)
				resp.Body, le.Response.ResponseBody = copyAndTrim(resp.Body)
				if le.Response.ResponseBody != "" && lo.Contains(opts.SecretBodyPaths, req.URL.Path) {
					le.Response.ResponseBody = "***"
				}
				le.Response.StatusCode = resp.StatusCode
			}

			lg.LogAttrs(req.Context(), opts.Level, "response received",
				slog.Any("response", le.Response),
				slog.Any("elapsed", le.Elapsed),
				slog.Any("err", le.Error),
			)

			return resp, err
		})
	}
}

func maskHeaders(h http.Header, secrets []string) map[string]string {
	res := map[string]string{}
	for k, vals := range h {
		if lo.Contains(secrets, k) {
			res[k] = "***"
			continue
		}
		res[k] = strings.Join(vals, ",")
	}
	return res
}

func maskQuery(u *url.URL, secrets []string) string {
	if u == nil {
		return ""
	}

	q := u.Query()
	masked := false
	for _, key := range secrets {
		if q.Has(key) {
			q.Set(key, "***")
			masked = true
		}
	}

	if !masked {
		return u.String()
	}

	cp := *u
	cp.RawQuery = q.Encode()
	return cp.String()
}

type logEntry struct {
	Request struct {
		Method      string
		URL         string
		Headers     map[string]string
		RequestBody string
	}
	Response struct {
		StatusCode   int
		Headers      map[string]string
		ResponseBody string
	}
	Error   error
	Elapsed time.Duration
}

const trimBodyAt = 1024

func copyAndTrim(r io.ReadCloser) (rd io.ReadCloser, result string) {
	if r == nil || r == http.NoBody {
		return r, ""
	}

	rd, result, read := readPortion(r, trimBodyAt)
	if read == trimBodyAt {
		result = result[:trimBodyAt] + "..."
	}
	result = strings.ReplaceAll(result, "\n", "")
	result = strings.ReplaceAll(result, "\t", "")

	return rd, result
}

func readPortion(src io.ReadCloser, limit int64) (rd io.ReadCloser, portion string, read int64) {
	buf := &bytes.Buffer{}

	read, err := io.CopyN(buf, src, limit)
	if err != nil {
		return &closer{rd: bytes.NewReader(buf.Bytes()), closeFn: src.Close}, buf.String(), read
	}

	return &closer{rd: io.MultiReader(buf, src), closeFn: src.Close}, buf.String(), read
}

type closer struct {
	rd      io.Reader
	closeFn func() error
}

func (c *closer) Read(p []byte) (n int, err error) { return c.rd.Read(p) }
func (c *closer) Close() error                     { return c.closeFn() }
