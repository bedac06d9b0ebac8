package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseConsoleSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseConsoleSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ConsoleAddr == "" {
		s.T().Skip("CONSOLE_ADDR not set, skipping console e2e")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Do sends one request against the console with logging, colors, and JSON debugging
func (s *BaseConsoleSuite) Do(t *testing.T, name, method, path, token string, body any) *http.Response {
	// 1. Print a colorized header for the step in logs
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	// 2. Marshal the body, dumping it if E2E_DEBUG_JSON is enabled
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		if s.Config.DebugJSON {
			t.Logf("REQUEST %s", payload)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("http://%s%s", s.Config.ConsoleAddr, path), reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// 3. Send and log the round trip timing
	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	t.Logf("HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	return resp
}

// ReadBody drains the response, dumping it if E2E_DEBUG_JSON is enabled
func (s *BaseConsoleSuite) ReadBody(t *testing.T, resp *http.Response) []byte {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if s.Config.DebugJSON {
		t.Logf("RESPONSE %s", raw)
	}
	return raw
}

// Login authenticates against the console and returns the session token
func (s *BaseConsoleSuite) Login(t *testing.T) string {
	resp := s.Do(t, "Login", http.MethodPost, "/login", "",
		map[string]string{"password": s.Config.ConsolePassword})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode, "Login refused, check CONSOLE_PASSWORD")

	var out map[string]string
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	s.Require().NotEmpty(out["token"])
	return out["token"]
}
