package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"stroked/play"
	"stroked/stroker"
)

// api is the HTTP event bridge: players push lifecycle events in, and
// the dispatch stream flows out over SSE.
type api struct {
	http.Handler
	loop *play.Loop
	sse  *sse.Server
}

// playerEvent is the JSON payload accepted from players, both over
// POST endpoints and the websocket bridge.
type playerEvent struct {
	Event      string `json:"event"`
	Millis     int64  `json:"ms"`
	Paused     bool   `json:"paused"`
	Path       string `json:"path"`
	ScriptPath string `json:"scriptPath"`
}

type limitsRequest struct {
	Axis   string   `json:"axis"`
	MinBy  *float64 `json:"minBy"`
	MinNew *float64 `json:"minNew"`
	MaxBy  *float64 `json:"maxBy"`
	MaxNew *float64 `json:"maxNew"`
}

type axisInfo struct {
	ID             int     `json:"id"`
	Kind           string  `json:"kind"`
	SafeSpeedLimit float64 `json:"safeSpeedLimit"`
}

func newAPI(loop *play.Loop, events chan dispatchEvent) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		loop:    loop,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(io.Discard, "", 0),
		}),
	}

	r.HandleFunc("/api/events/{kind}", a.postEvent).Methods("POST")
	r.HandleFunc("/api/limits", a.postLimits).Methods("POST")
	r.HandleFunc("/api/axes", a.getAxes).Methods("GET")
	r.HandleFunc("/api/description", a.getDescription).Methods("GET")
	r.HandleFunc("/ws", a.serveWS)
	r.PathPrefix("/events/").Handler(a.sse)

	go func() {
		for ev := range events {
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("ERROR: marshal json: %+v", err)
				continue
			}
			a.sse.SendMessage("/events/dispatch", sse.SimpleMessage(string(data)))
		}
	}()

	return a
}

// eventMessage translates a player payload into a coordinator message.
func eventMessage(ev playerEvent) (play.Message, error) {
	switch ev.Event {
	case "video":
		if ev.Path == "" {
			return nil, errors.New("missing path")
		}
		return play.VideoStarting{VideoPath: ev.Path, ScriptPath: ev.ScriptPath}, nil
	case "seek":
		return play.Seek{NowMillis: ev.Millis}, nil
	case "time":
		return play.TimeChange{NowMillis: ev.Millis}, nil
	case "pause":
		return play.PauseChange{Paused: ev.Paused}, nil
	}
	return nil, fmt.Errorf("unknown event %q", ev.Event)
}

func (a *api) postEvent(w http.ResponseWriter, req *http.Request) {
	var ev playerEvent
	if err := json.NewDecoder(req.Body).Decode(&ev); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ev.Event = mux.Vars(req)["kind"]

	msg, err := eventMessage(ev)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.loop.Submit(msg)
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) postLimits(w http.ResponseWriter, req *http.Request) {
	var lr limitsRequest
	if err := json.NewDecoder(req.Body).Decode(&lr); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	kind, err := stroker.ParseAxisKind(lr.Axis)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.loop.Submit(play.LimitChange{
		Axis:   kind,
		MinBy:  lr.MinBy,
		MinNew: lr.MinNew,
		MaxBy:  lr.MaxBy,
		MaxNew: lr.MaxNew,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) getAxes(w http.ResponseWriter, req *http.Request) {
	axes := a.loop.Axes()
	out := make([]axisInfo, 0, len(axes))
	for _, ax := range axes {
		out = append(out, axisInfo{
			ID:             int(ax.ID),
			Kind:           ax.Kind.String(),
			SafeSpeedLimit: ax.SafeSpeedLimit,
		})
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Println("ERROR: encode:", err)
	}
}

func (a *api) getDescription(w http.ResponseWriter, req *http.Request) {
	err := json.NewEncoder(w).Encode(map[string]string{
		"description": a.loop.Description(),
	})
	if err != nil {
		log.Println("ERROR: encode:", err)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// serveWS accepts a persistent connection from a player plugin and
// feeds its event stream into the coordinator, in arrival order.
func (a *api) serveWS(w http.ResponseWriter, req *http.Request) {
	ws, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Println("ERROR: upgrade:", err)
		return
	}
	defer ws.Close()

	for {
		var ev playerEvent
		if err := ws.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("ERROR: read:", err)
			}
			return
		}
		msg, err := eventMessage(ev)
		if err != nil {
			log.Println("ERROR: player event:", err)
			continue
		}
		a.loop.Submit(msg)
	}
}
