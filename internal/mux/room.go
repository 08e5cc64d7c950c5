package mux

import (
	"net/http"

	gmux "github.com/gorilla/mux"
	"teenpatti-server/pkg/room"
)

type roomListResponse struct {
	Rooms []room.Summary `json:"rooms"`
	Total int            `json:"total"`
}

func (m *Mux) getRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, rows, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		rooms := m.pitBoss.Rooms()
		total := len(rooms)

		if start > int64(total) {
			start = int64(total)
		}

		end := int(start) + rows
		if end > total {
			end = total
		}

		writeJSON(w, http.StatusOK, roomListResponse{
			Rooms: rooms[start:end],
			Total: total,
		})
	}
}

func (m *Mux) getRoomID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, found := m.pitBoss.Room(gmux.Vars(r)["roomId"])
		if !found {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}
