//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("FEEDBACK_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

// TestOwnerJourneyIntegration walks the full owner wizard against a running
// server: start, fill all six steps field by field, submit, verify the
// confirmation token, and confirm the device is lock-blocked afterwards.
func TestOwnerJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()
	device := fmt.Sprintf("itest-%d", time.Now().UnixNano())

	var startResp struct {
		Locked   bool `json:"locked"`
		Restored bool `json:"restored"`
		Session  struct {
			Step       int `json:"step"`
			TotalSteps int `json:"total_steps"`
		} `json:"session"`
	}
	doPost(t, client, base+"/api/session/start", device, map[string]string{
		"type": "owner", "locale": "english",
	}, &startResp)
	if startResp.Locked {
		t.Fatalf("fresh device should not be locked")
	}
	if startResp.Session.Step != 1 || startResp.Session.TotalSteps != 6 {
		t.Fatalf("unexpected start state: %+v", startResp.Session)
	}

	setField := func(field, value string) {
		t.Helper()
		var view struct {
			Errors map[string]string `json:"errors"`
		}
		doPost(t, client, base+"/api/session/field", device, map[string]string{
			"type": "owner", "field": field, "value": value,
		}, &view)
		if msg := view.Errors[field]; msg != "" {
			t.Fatalf("field %s rejected: %s", field, msg)
		}
	}
	toggle := func(field, id string) {
		t.Helper()
		var view struct{}
		doPost(t, client, base+"/api/session/option", device, map[string]string{
			"type": "owner", "field": field, "id": id,
		}, &view)
	}
	advance := func(wantStep int) {
		t.Helper()
		var res struct {
			Refused bool `json:"refused"`
			Session struct {
				Step   int               `json:"step"`
				Errors map[string]string `json:"errors"`
			} `json:"session"`
		}
		doPost(t, client, base+"/api/session/advance", device, map[string]string{"type": "owner"}, &res)
		if res.Refused {
			t.Fatalf("advance refused at step %d: %v", res.Session.Step, res.Session.Errors)
		}
		if res.Session.Step != wantStep {
			t.Fatalf("expected step %d, got %d", wantStep, res.Session.Step)
		}
	}

	setField("name", "Integration Tester")
	setField("email", fmt.Sprintf("itest_%d@example.com", time.Now().UnixNano()))
	setField("phone", "9876543210")
	setField("city", "MUMBAI")
	setField("propertyType", "PG_HOSTEL")
	setField("propertyCount", "2_5_PROPERTIES")
	advance(2)

	setField("biggestChallenge", "FINDING_TENANTS")
	advance(3)

	toggle("switchReasons", "SAVE_TIME")
	toggle("switchReasons", "BETTER_COLLECTION")
	advance(4)

	for _, id := range []string{"PROPERTY_LISTING", "TENANT_SCREENING", "AUTO_RENT_COLLECTION", "MOBILE_APP"} {
		toggle("topFeatures", id)
	}
	advance(5)

	setField("readyToPay", "WILLING_TO_PAY_YES")
	setField("marketingSpend", "5K_15K")
	setField("timing", "URGENCY_IMMEDIATE")
	advance(6)

	setField("referralSource", "FRIEND_REFERRAL")
	setField("friendName", "Ravi")
	var scoreView struct{}
	doPost(t, client, base+"/api/session/score", device, map[string]any{
		"type": "owner", "score": 9,
	}, &scoreView)

	var submitResp struct {
		Redirect struct {
			Name  string `json:"name"`
			Type  string `json:"type"`
			Lang  string `json:"lang"`
			Token string `json:"token"`
		} `json:"redirect"`
		Notification string `json:"notification"`
	}
	doPost(t, client, base+"/api/session/submit", device, map[string]string{"type": "owner"}, &submitResp)
	if submitResp.Redirect.Name != "Integration Tester" || submitResp.Redirect.Type != "owner" {
		t.Fatalf("unexpected redirect: %+v", submitResp.Redirect)
	}
	if submitResp.Redirect.Token == "" {
		t.Fatalf("redirect missing confirmation token")
	}

	var confirmResp struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	doGet(t, client, base+"/api/confirmation?token="+submitResp.Redirect.Token, &confirmResp)
	if confirmResp.Name != "Integration Tester" || confirmResp.Type != "owner" {
		t.Fatalf("unexpected confirmation claims: %+v", confirmResp)
	}

	var blockedResp struct {
		Locked   bool `json:"locked"`
		Redirect struct {
			Name string `json:"name"`
		} `json:"redirect"`
	}
	doPost(t, client, base+"/api/session/start", device, map[string]string{"type": "owner"}, &blockedResp)
	if !blockedResp.Locked {
		t.Fatalf("device should be lock-blocked after submitting")
	}
	if blockedResp.Redirect.Name != "Integration Tester" {
		t.Fatalf("lock redirect should carry the submitted name: %+v", blockedResp.Redirect)
	}
}

func doPost(t *testing.T, client *http.Client, url, device string, body, out any) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request for %s: %v", url, err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("build request for %s: %v", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if device != "" {
		req.Header.Set("X-Device-ID", device)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST %s returned %d: %s", url, resp.StatusCode, string(payload))
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			t.Fatalf("decode response from %s: %v (%s)", url, err, string(payload))
		}
	}
}

func doGet(t *testing.T, client *http.Client, url string, out any) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s returned %d: %s", url, resp.StatusCode, string(payload))
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			t.Fatalf("decode response from %s: %v (%s)", url, err, string(payload))
		}
	}
}
