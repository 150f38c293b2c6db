package search

import "github.com/LuanAssis01/sgi-maraba/internal/model"

// DefaultGazetteer lists the Marabá neighbourhoods offered when no request matches
func DefaultGazetteer() []model.Place {
	return []model.Place{
		{Name: "Nova Marabá", Coordinates: model.Coordinates{Lat: -5.3640, Lng: -49.1010}},
		{Name: "Cidade Nova", Coordinates: model.Coordinates{Lat: -5.3440, Lng: -49.0890}},
		{Name: "Velha Marabá", Coordinates: model.Coordinates{Lat: -5.3520, Lng: -49.1230}},
		{Name: "Marabá Pioneira", Coordinates: model.Coordinates{Lat: -5.3545, Lng: -49.1300}},
		{Name: "São Félix", Coordinates: model.Coordinates{Lat: -5.3380, Lng: -49.1410}},
		{Name: "Morada Nova", Coordinates: model.Coordinates{Lat: -5.4210, Lng: -49.0820}},
		{Name: "Liberdade", Coordinates: model.Coordinates{Lat: -5.3570, Lng: -49.0960}},
		{Name: "Independência", Coordinates: model.Coordinates{Lat: -5.3470, Lng: -49.0800}},
		{Name: "Laranjeiras", Coordinates: model.Coordinates{Lat: -5.3770, Lng: -49.0930}},
		{Name: "Belo Horizonte", Coordinates: model.Coordinates{Lat: -5.3330, Lng: -49.0940}},
	}
}
