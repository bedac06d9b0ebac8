package e2e

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testConsoleSuite struct {
	BaseConsoleSuite
}

func TestConsoleSuite(t *testing.T) {
	suite.Run(t, &testConsoleSuite{})
}

func (s *testConsoleSuite) TestFullConsoleFlow() {
	var token string

	// --- STEP 0: AUTHENTICATION GUARDS ---
	s.Run("Step 0: Bad password is refused", func() {
		resp := s.Do(s.T(), "Login with a wrong password", http.MethodPost, "/login", "",
			map[string]string{"password": "definitely-wrong"})
		s.ReadBody(s.T(), resp)
		s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("Step 1: Login issues a session token", func() {
		token = s.Login(s.T())
	})

	// --- STEP 2: STORE INSPECTION ---
	s.Run("Step 2: Inspect page renders store rows", func() {
		resp := s.Do(s.T(), "Inspect the group prefix", http.MethodGet, "/inspect?prefix=group:", token, nil)
		body := string(s.ReadBody(s.T(), resp))
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Require().Contains(body, "fractal-bot console")
		s.Require().Contains(body, "uptime", "Stats block missing from the inspect page")
	})

	s.Run("Step 3: Inspect without a token is refused", func() {
		resp := s.Do(s.T(), "Inspect with no session", http.MethodGet, "/inspect", "", nil)
		s.ReadBody(s.T(), resp)
		s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	// --- STEP 4: EXPORTS ---
	s.Run("Step 4: Exports listing answers", func() {
		resp := s.Do(s.T(), "List the export directory", http.MethodGet, "/exports/", token, nil)
		raw := s.ReadBody(s.T(), resp)
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		// Empty on a fresh store, filled after a /summarize export
		var names []string
		s.Require().NoError(json.Unmarshal(raw, &names))
		s.T().Logf("Console lists %d export files", len(names))
	})
}
