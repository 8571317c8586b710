/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package alm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestEvalEndpoint(t *testing.T) {
	srv := httptest.NewServer(Handler(NewBuiltinRegistry()))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/eval", "text/plain", strings.NewReader("(+ 2 5)"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var ok evalResult
	if err := json.NewDecoder(res.Body).Decode(&ok); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ok.Result != "7" {
		t.Fatalf("expected result 7, got %q", ok.Result)
	}
}

func TestEvalEndpoint_Error(t *testing.T) {
	srv := httptest.NewServer(Handler(NewBuiltinRegistry()))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/eval", "text/plain", strings.NewReader("(+ 2 nope)"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.StatusCode)
	}
	var fail evalFailure
	if err := json.NewDecoder(res.Body).Decode(&fail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fail.Error.Kind != "unbound-name" {
		t.Fatalf("expected kind unbound-name, got %q", fail.Error.Kind)
	}
	if !strings.Contains(fail.Error.Message, "nope") {
		t.Fatalf("message misses the identifier: %q", fail.Error.Message)
	}
}

func TestEvalEndpoint_MethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(Handler(NewBuiltinRegistry()))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/eval")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.StatusCode)
	}
}

func TestWebsocketSession(t *testing.T) {
	srv := httptest.NewServer(Handler(NewBuiltinRegistry()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	roundtrip := func(program string) []byte {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(program)); err != nil {
			t.Fatalf("write %q: %v", program, err)
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read reply for %q: %v", program, err)
		}
		return msg
	}

	var ok evalResult
	if err := json.Unmarshal(roundtrip("(x^2+y^2 2 5)"), &ok); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ok.Result != "29" {
		t.Fatalf("expected 29, got %q", ok.Result)
	}

	// the session survives an error and keeps answering
	var fail evalFailure
	if err := json.Unmarshal(roundtrip("(+ 1)"), &fail); err != nil {
		t.Fatalf("decode error reply: %v", err)
	}
	if fail.Error.Kind != "arity" {
		t.Fatalf("expected kind arity, got %q", fail.Error.Kind)
	}

	if err := json.Unmarshal(roundtrip("(- 2 5)"), &ok); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ok.Result != "-3" {
		t.Fatalf("expected -3, got %q", ok.Result)
	}
}
