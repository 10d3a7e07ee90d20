// SPDX-License-Identifier: MIT

// Package upstreamtest provides a configurable in-process reservation service
// for tests.
package upstreamtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// Service paths served by MockServer.
const (
	PathLogin = "/api.php/login"
	PathRooms = "/api.php/v3areas"
	PathSeats = "/api.php/spaces_old"
	PathBook  = "/api.php/spaces/book"

	sessionCookie = "PHPSESSID"
)

// MockRoom describes one room served by the mock.
type MockRoom struct {
	Name       string
	CategoryID string
	ContentID  string
	Floors     []MockFloor
}

// MockFloor describes one floor of a room.
type MockFloor struct {
	Name    string
	ID      string
	SeatIDs []string
}

// Call is one request received by the mock.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	At     time.Time
}

// MockServer is a configurable reservation service.
type MockServer struct {
	*httptest.Server

	mu          sync.Mutex
	rooms       []MockRoom
	loginCode   string
	bookCodes   []string
	failures    map[string]int // HTTP 500 responses before success per path
	rawOverride map[string]string
	calls       []Call
}

// NewMockServer starts a mock with two rooms.
func NewMockServer() *MockServer {
	m := &MockServer{
		loginCode:   "ok",
		bookCodes:   []string{"ok"},
		failures:    make(map[string]int),
		rawOverride: make(map[string]string),
	}
	m.rooms = DefaultRooms()

	mux := http.NewServeMux()
	mux.HandleFunc(PathLogin, m.handleLogin)
	mux.HandleFunc(PathRooms, m.handleRooms)
	mux.HandleFunc(PathSeats, m.handleSeats)
	mux.HandleFunc(PathBook, m.handleBook)

	m.Server = httptest.NewServer(mux)
	return m
}

// DefaultRooms returns the rooms a new mock serves.
func DefaultRooms() []MockRoom {
	return []MockRoom{
		{
			Name: "二楼自习室", CategoryID: "591", ContentID: "3",
			Floors: []MockFloor{
				{Name: "2F-A", ID: "12", SeatIDs: []string{"101", "102", "103"}},
				{Name: "2F-B", ID: "13", SeatIDs: []string{"201"}},
			},
		},
		{
			Name: "Room 3", CategoryID: "592", ContentID: "4",
			Floors: []MockFloor{
				{Name: "3F", ID: "21", SeatIDs: []string{"301", "302"}},
			},
		},
	}
}

// URL returns the absolute URL of a service path.
func (m *MockServer) URL(path string) string {
	return m.Server.URL + path
}

// SetRooms replaces the served rooms.
func (m *MockServer) SetRooms(rooms []MockRoom) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms = rooms
}

// SetLoginCode sets the CODE returned by login.
func (m *MockServer) SetLoginCode(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginCode = code
}

// SetBookCodes sets the sequence of CODEs returned by booking; the last one repeats.
func (m *MockServer) SetBookCodes(codes ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookCodes = codes
}

// SetFailures makes the next n requests to path answer HTTP 500.
func (m *MockServer) SetFailures(path string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = n
}

// SetRawResponse serves body verbatim for every request to path.
func (m *MockServer) SetRawResponse(path, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawOverride[path] = body
}

// Calls returns a copy of the received requests.
func (m *MockServer) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallsTo returns the received requests for one path and method.
func (m *MockServer) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// record logs the call and reports whether the handler should stop because
// a failure or raw override was served.
func (m *MockServer) record(w http.ResponseWriter, r *http.Request) bool {
	_ = r.ParseForm()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Form:   r.PostForm,
		At:     time.Now(),
	})
	if n := m.failures[r.URL.Path]; n > 0 {
		m.failures[r.URL.Path] = n - 1
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return true
	}
	if raw, ok := m.rawOverride[r.URL.Path]; ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw))
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (m *MockServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if m.record(w, r) {
		return
	}
	m.mu.Lock()
	code := m.loginCode
	m.mu.Unlock()

	if code != "ok" {
		writeJSON(w, map[string]any{"CODE": code, "MESSAGE": "用户名或密码错误"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "mock-session", Path: "/"})
	writeJSON(w, map[string]any{
		"CODE": "ok",
		"DATA": map[string]any{
			"uid":       "42",
			"user_info": map[string]any{"name": "Alice"},
		},
	})
}

func (m *MockServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	if m.record(w, r) {
		return
	}
	m.mu.Lock()
	rooms := m.rooms
	m.mu.Unlock()

	items := make([]map[string]any, 0, len(rooms))
	for _, room := range rooms {
		link := "/space/detail?category_id=" + room.CategoryID + "&content_id=" + room.ContentID
		items = append(items, map[string]any{
			"name": room.Name,
			"link": map[string]any{"url": url.QueryEscape(link)},
		})
	}
	writeJSON(w, map[string]any{
		"content": map[string]any{
			"children": []any{
				map[string]any{"type": "banner"},
				map[string]any{"defaultItems": items},
			},
		},
	})
}

func (m *MockServer) findRoom(categoryID, contentID string) (MockRoom, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.rooms {
		if room.CategoryID == categoryID && room.ContentID == contentID {
			return room, true
		}
	}
	return MockRoom{}, false
}

func (m *MockServer) handleSeats(w http.ResponseWriter, r *http.Request) {
	if m.record(w, r) {
		return
	}

	if r.Method == http.MethodGet {
		q := r.URL.Query()
		room, ok := m.findRoom(q.Get("category_id"), q.Get("content_id"))
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{
			"data": map[string]any{
				"title": room.Name,
				"space_category": map[string]any{
					"category_id": room.CategoryID,
					"content_id":  room.ContentID,
				},
			},
		})
		return
	}

	room, ok := m.findRoom(r.PostForm.Get("space_category[category_id]"), r.PostForm.Get("space_category[content_id]"))
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	floors := make([]any, 0, len(room.Floors))
	for _, f := range room.Floors {
		pois := make([]any, 0, len(f.SeatIDs))
		for _, id := range f.SeatIDs {
			pois = append(pois, map[string]any{"seatId": id, "title": "Seat " + id, "x": 10, "y": 20})
		}
		floors = append(floors, map[string]any{
			"roomName": f.Name,
			"seatMap": map[string]any{
				"info": map[string]any{"id": f.ID},
				"POIs": pois,
			},
		})
	}
	writeJSON(w, map[string]any{
		"allContent": map[string]any{
			"children": []any{
				map[string]any{},
				map[string]any{},
				map[string]any{"children": map[string]any{"children": floors}},
			},
		},
	})
}

func (m *MockServer) handleBook(w http.ResponseWriter, r *http.Request) {
	if m.record(w, r) {
		return
	}
	if c, err := r.Cookie(sessionCookie); err != nil || c.Value == "" {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	m.mu.Lock()
	code := "ok"
	if len(m.bookCodes) > 0 {
		code = m.bookCodes[0]
		if len(m.bookCodes) > 1 {
			m.bookCodes = m.bookCodes[1:]
		}
	}
	m.mu.Unlock()

	msg := "预约成功"
	if code != "ok" {
		msg = "座位已被预约"
	}
	writeJSON(w, map[string]any{"CODE": code, "MESSAGE": msg, "DATA": map[string]any{"result": code}})
}
