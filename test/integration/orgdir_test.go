//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestAuthFlow_Basic(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.HealthURL, 60*time.Second)

	suffix := RandSuffix()
	username := "it-user-" + suffix
	email := fmt.Sprintf("it-%s@example.com", suffix)
	pass := "supersecret"

	_, signupBody := httpPostJSON(t, cfg.BaseURL+cfg.SignUpPath, map[string]string{
		"username": username,
		"email":    email,
		"password": pass,
	}, "", http.StatusCreated)

	var su struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(signupBody, &su); err != nil {
		t.Fatalf("unmarshal signup: %v body=%s", err, string(signupBody))
	}
	if su.ID == "" || su.Username != username {
		t.Fatalf("signup response mismatch: %+v", su)
	}
	t.Logf("[signup] account=%s", su.ID)

	resp, loginBody := httpPostJSON(t, cfg.BaseURL+cfg.LoginPath, map[string]string{
		"usernameOrEmail": username,
		"password":        pass,
	}, "", http.StatusOK)

	var li struct {
		AccessToken string `json:"accessToken"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal(loginBody, &li); err != nil {
		t.Fatalf("unmarshal login: %v body=%s", err, string(loginBody))
	}
	if li.AccessToken == "" {
		t.Fatalf("login returned no access token: %s", string(loginBody))
	}
	ck := refreshCookie(resp)
	if ck == nil {
		t.Fatal("login did not set refresh cookie")
	}
	if !ck.HttpOnly {
		t.Fatal("refresh cookie must be http-only")
	}
	t.Logf("[login] token len=%d cookie maxage=%d", len(li.AccessToken), ck.MaxAge)

	// refresh mints a fresh access token from the cookie alone
	req, _ := http.NewRequest(http.MethodPost, cfg.BaseURL+cfg.RefreshPath, nil)
	req.AddCookie(ck)
	_, refreshBody := doReq(t, req, http.StatusOK)
	var rf struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(refreshBody, &rf); err != nil {
		t.Fatalf("unmarshal refresh: %v body=%s", err, string(refreshBody))
	}
	if rf.AccessToken == "" {
		t.Fatal("refresh returned no access token")
	}
}

func TestAuthFlow_BadCredentials(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.HealthURL, 60*time.Second)

	suffix := RandSuffix()
	username := "it-bad-" + suffix
	email := fmt.Sprintf("it-bad-%s@example.com", suffix)

	httpPostJSON(t, cfg.BaseURL+cfg.SignUpPath, map[string]string{
		"username": username,
		"email":    email,
		"password": "supersecret",
	}, "", http.StatusCreated)

	_, wrongPass := httpPostJSON(t, cfg.BaseURL+cfg.LoginPath, map[string]string{
		"usernameOrEmail": username,
		"password":        "wrong-password",
	}, "", http.StatusUnauthorized)

	_, unknownUser := httpPostJSON(t, cfg.BaseURL+cfg.LoginPath, map[string]string{
		"usernameOrEmail": "no-such-user-" + suffix,
		"password":        "supersecret",
	}, "", http.StatusUnauthorized)

	if string(wrongPass) != string(unknownUser) {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", wrongPass, unknownUser)
	}

	// duplicate registration
	httpPostJSON(t, cfg.BaseURL+cfg.SignUpPath, map[string]string{
		"username": username,
		"email":    "other-" + email,
		"password": "supersecret",
	}, "", http.StatusConflict)
}

func TestDepartments_EndToEnd(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.HealthURL, 60*time.Second)

	suffix := RandSuffix()
	httpPostJSON(t, cfg.BaseURL+cfg.SignUpPath, map[string]string{
		"username": "it-dir-" + suffix,
		"email":    fmt.Sprintf("it-dir-%s@example.com", suffix),
		"password": "supersecret",
	}, "", http.StatusCreated)

	_, loginBody := httpPostJSON(t, cfg.BaseURL+cfg.LoginPath, map[string]string{
		"usernameOrEmail": "it-dir-" + suffix,
		"password":        "supersecret",
	}, "", http.StatusOK)
	var li struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(loginBody, &li); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}

	// unauthenticated access is rejected
	httpGetAuth(t, cfg.BaseURL+cfg.DeptsPath, "", http.StatusUnauthorized)

	deptName := "it-dept-" + suffix
	_, createBody := httpPostJSON(t, cfg.BaseURL+cfg.DeptsPath, map[string]any{
		"name": deptName,
		"subDepartments": []map[string]string{
			{"name": "Alpha"},
			{"name": "Beta"},
		},
	}, li.AccessToken, http.StatusCreated)

	var created struct {
		ID             int64  `json:"id"`
		Name           string `json:"name"`
		SubDepartments []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"sub_departments"`
	}
	if err := json.Unmarshal(createBody, &created); err != nil {
		t.Fatalf("unmarshal create: %v body=%s", err, string(createBody))
	}
	if len(created.SubDepartments) != 2 {
		t.Fatalf("want 2 sub-departments, got %d", len(created.SubDepartments))
	}
	t.Logf("[dept] created id=%d name=%s", created.ID, created.Name)

	_, getBody := httpGetAuth(t, fmt.Sprintf("%s%s/%d", cfg.BaseURL, cfg.DeptsPath, created.ID),
		li.AccessToken, http.StatusOK)
	var fetched struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(getBody, &fetched); err != nil {
		t.Fatalf("unmarshal get: %v", err)
	}
	if fetched.ID != created.ID {
		t.Fatalf("get returned wrong department: %d", fetched.ID)
	}

	// same name twice collides
	httpPostJSON(t, cfg.BaseURL+cfg.DeptsPath, map[string]any{"name": deptName},
		li.AccessToken, http.StatusConflict)
}
