package seed

import "aidhub/pkg/types"

type place struct {
	Name   string
	Coords types.Coordinates
}

// Coordinates are fixed so seeding never depends on the geocoder.
var places = []place{
	{Name: "Austin, TX", Coords: types.Coordinates{Latitude: 30.2672, Longitude: -97.7431}},
	{Name: "Round Rock, TX", Coords: types.Coordinates{Latitude: 30.5083, Longitude: -97.6789}},
	{Name: "San Marcos, TX", Coords: types.Coordinates{Latitude: 29.8833, Longitude: -97.9414}},
	{Name: "Houston, TX", Coords: types.Coordinates{Latitude: 29.7604, Longitude: -95.3698}},
	{Name: "Dallas, TX", Coords: types.Coordinates{Latitude: 32.7767, Longitude: -96.7970}},
	{Name: "Chicago, IL", Coords: types.Coordinates{Latitude: 41.8781, Longitude: -87.6298}},
	{Name: "Brooklyn, NY", Coords: types.Coordinates{Latitude: 40.6782, Longitude: -73.9442}},
	{Name: "Oakland, CA", Coords: types.Coordinates{Latitude: 37.8044, Longitude: -122.2712}},
	{Name: "Denver, CO", Coords: types.Coordinates{Latitude: 39.7392, Longitude: -104.9903}},
	{Name: "Atlanta, GA", Coords: types.Coordinates{Latitude: 33.7490, Longitude: -84.3880}},
}

var recipientNames = []string{
	"Eastside Family Shelter",
	"Hope Community Pantry",
	"St. Mark's Outreach",
	"Riverside Youth Center",
	"Second Chance Housing",
	"Northside Senior Services",
	"Harbor Women's Center",
	"Open Door Mission",
	"Bright Futures School",
	"Neighbors United",
}

var donorNames = []string{
	"Ava Williams",
	"Liam Johnson",
	"Noah Brown",
	"Mia Davis",
	"Elijah Garcia",
	types.AnonymousDonor,
}

var requestMessages = []string{
	"Winter is coming and several families arrived with nothing.",
	"Our pantry shelves are nearly empty this week.",
	"Kids in our after-school program need basics.",
	"Recently resettled families need help setting up homes.",
	"Serving more seniors than ever this month.",
}

type weightedType struct {
	DonationType string
	Weight       int
}

var weightedTypes = []weightedType{
	{DonationType: "clothes", Weight: 25},
	{DonationType: "food", Weight: 25},
	{DonationType: "hygiene", Weight: 12},
	{DonationType: "books", Weight: 8},
	{DonationType: "toys", Weight: 8},
	{DonationType: "medicine", Weight: 7},
	{DonationType: "furniture", Weight: 6},
	{DonationType: "electronics", Weight: 5},
	{DonationType: "supplies", Weight: 3},
	{DonationType: "appliances", Weight: 1},
}
