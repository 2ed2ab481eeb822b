package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/authentica/internal/model"
	"github.com/ppiankov/authentica/internal/util"
)

const verifyMaxRetries = 3

// verifySleepFunc is the sleep function used between retries (injectable for tests)
var verifySleepFunc = time.Sleep

// Verifier checks that plagiarism match sources are reachable and classifies their authority
type Verifier struct {
	httpClient *http.Client
	maxWorkers int
	userAgent  string
	authority  *AuthorityClassifier
	robots     *util.RobotsChecker
}

// NewVerifier creates a verifier from the verify, authority, and HTTP config sections
func NewVerifier(cfg model.VerifyConfig, authConfig *model.AuthorityConfig, httpCfg model.HTTPConfig) *Verifier {
	maxWorkers := cfg.Workers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userAgent := httpCfg.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultConfig().HTTP.UserAgent
	}

	proxyFunc := util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy)

	return &Verifier{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		maxWorkers: maxWorkers,
		userAgent:  userAgent,
		authority:  NewAuthorityClassifier(authConfig),
		robots:     util.NewRobotsChecker(userAgent, timeout, proxyFunc),
	}
}

// Verify checks all match sources concurrently. Results are index-aligned with matches.
func (v *Verifier) Verify(ctx context.Context, matches []model.PlagiarismMatch) []model.VerificationResult {
	results := make([]model.VerificationResult, len(matches))
	if len(matches) == 0 {
		return results
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.maxWorkers)

	for i, m := range matches {
		wg.Add(1)
		go func(idx int, m model.PlagiarismMatch) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = model.VerificationResult{
					MatchID:   m.ID,
					URL:       m.URL,
					Authority: v.authority.Classify(m.URL),
					Error:     "context cancelled",
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = v.verifyWithRetry(ctx, m)
		}(i, m)
	}

	wg.Wait()
	return results
}

// verifySingle issues one HEAD request for a match source
func (v *Verifier) verifySingle(ctx context.Context, match model.PlagiarismMatch) model.VerificationResult {
	result := model.VerificationResult{
		MatchID:   match.ID,
		URL:       match.URL,
		Authority: v.authority.Classify(match.URL),
	}

	if !v.robots.IsAllowed(ctx, match.URL) {
		result.Disallowed = true
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, match.URL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		result.IsDead = true
		return result
	}
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.IsDead = true
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.IsAccessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.IsDead = true
	}

	if final := resp.Request.URL.String(); final != match.URL {
		result.RedirectURL = final
	}

	if lastModified := resp.Header.Get("Last-Modified"); lastModified != "" {
		if t, err := http.ParseTime(lastModified); err == nil {
			result.LastModified = &t
		}
	}

	return result
}

// verifyWithRetry retries transient failures with exponential backoff
func (v *Verifier) verifyWithRetry(ctx context.Context, match model.PlagiarismMatch) model.VerificationResult {
	var result model.VerificationResult
	for attempt := 0; attempt < verifyMaxRetries; attempt++ {
		result = v.verifySingle(ctx, match)
		if !isRetryableResult(result) || ctx.Err() != nil {
			return result
		}
		if attempt < verifyMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			verifySleepFunc(backoff)
		}
	}
	return result
}

// isRetryableResult returns true for results that indicate transient failures
func isRetryableResult(result model.VerificationResult) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return result.Error != "" && isRetryableNetworkError(result.Error)
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
