package store

import (
	"time"

	"github.com/LuanAssis01/sgi-maraba/internal/model"
)

// DefaultUsers returns one citizen and one admin account
func DefaultUsers() []model.User {
	return []model.User{
		{
			ID:               "seed-citizen",
			Name:             "Maria Silva",
			Email:            "maria@email.com",
			Phone:            "(94) 99999-1234",
			CredentialSecret: "123456",
			Role:             model.RoleCitizen,
		},
		{
			ID:               "seed-admin",
			Name:             "Administrador",
			Email:            "admin@maraba.pa.gov.br",
			Phone:            "(94) 3322-0000",
			CredentialSecret: "admin123",
			Role:             model.RoleAdmin,
		},
	}
}

var brt = time.FixedZone("BRT", -3*60*60)

func seedEvent(kind model.EventKind, title, description string, at time.Time) model.TimelineEvent {
	return model.TimelineEvent{
		Date:        at.Format(DateLayout),
		Time:        at.Format(TimeLayout),
		Title:       title,
		Description: description,
		Kind:        kind,
		At:          at,
	}
}

func strPtr(s string) *string { return &s }

// DefaultRequests returns five requests covering every status and priority
func DefaultRequests() []model.Request {
	d := func(day, hour, minute int) time.Time {
		return time.Date(2024, time.March, day, hour, minute, 0, 0, brt)
	}
	maria := model.Reporter{Name: "Maria Silva", Email: "maria@email.com", Phone: "(94) 99999-1234"}

	return []model.Request{
		{
			ID:          1,
			Protocol:    "2024-0001-LP",
			Type:        "lamp out",
			Address:     "Rua Sete de Junho, 120 - Velha Marabá",
			Status:      model.StatusPending,
			Priority:    model.PriorityMedium,
			Coordinates: model.Coordinates{Lat: -5.3517, Lng: -49.1236},
			CreatedDate: d(10, 8, 15).Format(DateLayout),
			Reporter:    maria,
			Description: "Lamp has been out for three nights.",
			Timeline: []model.TimelineEvent{
				seedEvent(model.EventReceived, "Request received", "Request registered in the system", d(10, 8, 15)),
			},
		},
		{
			ID:          2,
			Protocol:    "2024-0002-LP",
			Type:        "damaged pole",
			Address:     "Avenida VP-8, Folha 16 - Nova Marabá",
			Status:      model.StatusProgress,
			Priority:    model.PriorityCritical,
			Coordinates: model.Coordinates{Lat: -5.3649, Lng: -49.0997},
			CreatedDate: d(11, 14, 0).Format(DateLayout),
			Reporter:    model.Reporter{Name: "João Pereira", Email: "joao@email.com", Phone: "(94) 98888-4321"},
			Description: "Pole leaning over the sidewalk after a collision.",
			Timeline: []model.TimelineEvent{
				seedEvent(model.EventReceived, "Request received", "Request registered in the system", d(11, 14, 0)),
				seedEvent(model.EventDispatched, "Team dispatched", "Equipe Norte assigned, estimated 24h", d(11, 16, 30)),
			},
			AssignedTeam:  strPtr("Equipe Norte"),
			EstimatedTime: strPtr("24h"),
		},
		{
			ID:          3,
			Protocol:    "2024-0003-LP",
			Type:        "flickering lamp",
			Address:     "Rua Itacaiúnas, 45 - Cidade Nova",
			Status:      model.StatusDone,
			Priority:    model.PriorityLow,
			Coordinates: model.Coordinates{Lat: -5.3433, Lng: -49.0884},
			CreatedDate: d(5, 19, 40).Format(DateLayout),
			Reporter:    maria,
			Description: "Lamp flickers all night.",
			Timeline: []model.TimelineEvent{
				seedEvent(model.EventReceived, "Request received", "Request registered in the system", d(5, 19, 40)),
				seedEvent(model.EventDispatched, "Team dispatched", "Equipe Sul assigned, estimated 48h", d(6, 9, 0)),
				seedEvent(model.EventCompleted, "Service completed", "Lamp replaced", d(7, 11, 20)),
			},
			AssignedTeam:  strPtr("Equipe Sul"),
			EstimatedTime: strPtr("48h"),
		},
		{
			ID:          4,
			Protocol:    "2024-0004-LP",
			Type:        "lamp on during day",
			Address:     "Travessa Santa Terezinha - Marabá Pioneira",
			Status:      model.StatusCancelled,
			Priority:    model.PriorityLow,
			Coordinates: model.Coordinates{Lat: -5.3540, Lng: -49.1302},
			CreatedDate: d(8, 10, 5).Format(DateLayout),
			Reporter:    model.Reporter{Name: "Ana Costa", Email: "ana@email.com", Phone: "(94) 97777-0000"},
			Description: "Lamp stays on during the day.",
			Timeline: []model.TimelineEvent{
				seedEvent(model.EventReceived, "Request received", "Request registered in the system", d(8, 10, 5)),
				seedEvent(model.EventCancelled, "Request cancelled", "Duplicate of an existing request", d(8, 15, 45)),
			},
		},
		{
			ID:          5,
			Protocol:    "2024-0005-LP",
			Type:        "exposed wiring",
			Address:     "Rodovia Transamazônica, km 5 - São Félix",
			Status:      model.StatusPending,
			Priority:    model.PriorityHigh,
			Coordinates: model.Coordinates{Lat: -5.3390, Lng: -49.1405},
			CreatedDate: d(12, 7, 50).Format(DateLayout),
			Reporter:    model.Reporter{Name: "Carlos Souza", Email: "carlos@email.com", Phone: "(94) 96666-1111"},
			Description: "Wires hanging from the pole base.",
			Timeline: []model.TimelineEvent{
				seedEvent(model.EventReceived, "Request received", "Request registered in the system", d(12, 7, 50)),
			},
		},
	}
}

// DefaultNotifications returns three notifications, most recent first
func DefaultNotifications() []model.Notification {
	return []model.Notification{
		{
			ID:        "seed-n3",
			Message:   "new request: 2024-0005-LP",
			Timestamp: time.Date(2024, time.March, 12, 7, 50, 0, 0, brt),
			Read:      false,
		},
		{
			ID:        "seed-n2",
			Message:   "request 2024-0002-LP dispatched to Equipe Norte",
			Timestamp: time.Date(2024, time.March, 11, 16, 30, 0, 0, brt),
			Read:      false,
		},
		{
			ID:        "seed-n1",
			Message:   "request 2024-0003-LP completed",
			Timestamp: time.Date(2024, time.March, 7, 11, 20, 0, 0, brt),
			Read:      true,
		},
	}
}

// Display layouts for TimelineEvent.Date and TimelineEvent.Time
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04"
)
