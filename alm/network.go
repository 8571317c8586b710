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

import "io"
import "fmt"
import "time"
import "strings"
import "net/http"
import "encoding/json"
import "github.com/google/uuid"
import "github.com/gorilla/websocket"

// session is one remote evaluation context. Every websocket connection
// gets a private environment seeded from the registry, so remote users
// see the core bindings but never the host's IO functions and never
// each other.
type session struct {
	ID uuid.UUID
	en *Env
}

func newSession(r *Registry) *session {
	return &session{ID: uuid.New(), en: r.Environment()}
}

type evalResult struct {
	Result string `json:"result"`
}

type evalError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type evalFailure struct {
	Error evalError `json:"error"`
}

// Handler serves the remote evaluation endpoints:
//
//	POST /eval   body is a program, response is {"result": ...} on 200
//	             or {"error": {"kind": ..., "message": ...}} on 422
//	GET  /ws     websocket; one session per connection, one JSON reply
//	             per text message, same shapes as /eval
func Handler(r *Registry) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/eval", func(res http.ResponseWriter, req *http.Request) {
		serveEval(r, res, req)
	})
	mux.HandleFunc("/ws", func(res http.ResponseWriter, req *http.Request) {
		serveWebsocket(r, res, req)
	})
	return mux
}

// Serve starts the evaluation endpoint on the given port in the background.
func Serve(port int, r *Registry) {
	server := &http.Server {
		Addr: fmt.Sprintf(":%v", port),
		Handler: Handler(r),
		ReadTimeout: 10 * time.Second,
		WriteTimeout: 10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	go server.ListenAndServe()
	// TODO: ListenAndServeTLS
}

func serveEval(r *Registry, res http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		res.Header().Set("Allow", "POST")
		http.Error(res, "405 Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	var b strings.Builder
	io.Copy(&b, req.Body)
	req.Body.Close()

	res.Header().Set("Content-Type", "application/json")
	// catch panics from native functions and answer 500
	defer func () {
		if rec := recover(); rec != nil {
			PrintError("error in eval handler: " + fmt.Sprint(rec))
			res.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(res).Encode(evalFailure{evalError{"internal", fmt.Sprint(rec)}})
		}
	}()
	s := newSession(r)
	result, err := EvalAll(req.RemoteAddr, b.String(), s.en)
	if err != nil {
		res.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(res).Encode(evalFailure{evalError{ErrorKind(err), err.Error()}})
		return
	}
	json.NewEncoder(res).Encode(evalResult{result.String()})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { return true },
}

func serveWebsocket(r *Registry, res http.ResponseWriter, req *http.Request) {
	ws, err := upgrader.Upgrade(res, req, nil)
	if err != nil {
		return
	}
	s := newSession(r)
	sessionOpened()
	defer sessionClosed()
	defer ws.Close()
	defer func () {
		if rec := recover(); rec != nil {
			PrintError("error in websocket session " + s.ID.String() + ": " + fmt.Sprint(rec))
		}
	}()
	for {
		messageType, msg, err := ws.ReadMessage()
		if err != nil {
			return // closed or broken connection ends the session
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var reply []byte
		result, err := EvalAll(s.ID.String(), string(msg), s.en)
		if err != nil {
			reply, _ = json.Marshal(evalFailure{evalError{ErrorKind(err), err.Error()}})
		} else {
			reply, _ = json.Marshal(evalResult{result.String()})
		}
		if err := ws.WriteMessage(websocket.TextMessage, reply); err != nil {
			return
		}
	}
}
