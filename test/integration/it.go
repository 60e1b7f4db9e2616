//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"
)

/********** ENV CONFIG **********/

type Cfg struct {
	BaseURL     string
	HealthURL   string
	SignUpPath  string
	LoginPath   string
	RefreshPath string
	DeptsPath   string
}

func LoadCfg() Cfg {
	return Cfg{
		BaseURL:     getenv("IT_BASE_URL", "http://127.0.0.1:8080"),
		HealthURL:   getenv("IT_HEALTH", "http://127.0.0.1:9102/healthz"),
		SignUpPath:  getenv("IT_SIGNUP", "/v1/auth/sign-up"),
		LoginPath:   getenv("IT_LOGIN", "/v1/auth/login"),
		RefreshPath: getenv("IT_REFRESH", "/v1/auth/refresh"),
		DeptsPath:   getenv("IT_DEPTS", "/v1/departments"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func WaitHealthz(t *testing.T, url string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			t.Logf("[it] healthz OK: %s", url)
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("[it] healthz failed: %s", url)
}

func TCPReachable(addr string, timeout time.Duration) error {
	d := net.Dialer{Timeout: timeout}
	c, err := d.Dial("tcp", addr)
	if err != nil {
		return err
	}
	_ = c.Close()
	return nil
}

/********** HTTP HELPERS **********/

func httpPostJSON(t *testing.T, url string, body any, bearer string, wantCode int) (*http.Response, []byte) {
	t.Helper()
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return doReq(t, req, wantCode)
}

func httpGetAuth(t *testing.T, url, bearer string, wantCode int) (*http.Response, []byte) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return doReq(t, req, wantCode)
}

func doReq(t *testing.T, req *http.Request, wantCode int) (*http.Response, []byte) {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantCode {
		t.Fatalf("http %s %s: got %d want %d body=%s", req.Method, req.URL, resp.StatusCode, wantCode, string(data))
	}
	return resp, data
}

func refreshCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	return nil
}

func RandSuffix() string {
	return time.Now().UTC().Format("150405.000000")
}
