package core

import "ideospace/pkg/domain"

// SeedEntry is a named position used to populate an empty table.
type SeedEntry struct {
	Name string
	X    int
	Y    int
}

// DefaultIdeologies are inserted when the ideologies table is empty.
var DefaultIdeologies = []SeedEntry{
	{Name: "Centrist", X: 0, Y: 0},
	{Name: "Environmentalism", X: -50, Y: -50},
	{Name: "Socialism", X: -80, Y: 40},
	{Name: "Liberalism", X: 60, Y: -30},
	{Name: "Conservatism", X: 70, Y: 60},
}

// DefaultParties are inserted when seeding is enabled and the parties
// table is empty. Each sits on one default ideology centre.
var DefaultParties = []SeedEntry{
	{Name: "Unity Party", X: 0, Y: 0},
	{Name: "Green Force", X: -50, Y: -50},
	{Name: "Workers Union", X: -80, Y: 40},
	{Name: "Liberty League", X: 60, Y: -30},
	{Name: "Tradition Front", X: 70, Y: 60},
}

// DefaultVoters are inserted when seeding is enabled and the voters table
// is empty. They cluster around the default parties.
var DefaultVoters = []SeedEntry{
	{Name: "John Doe", X: 0, Y: 0},
	{Name: "Mia Clarke", X: 4, Y: -3},
	{Name: "Noah Brooks", X: -6, Y: 5},
	{Name: "Ella Hughes", X: 8, Y: 2},
	{Name: "Liam Foster", X: -3, Y: -7},
	{Name: "Grace Turner", X: -55, Y: -50},
	{Name: "Henry Wells", X: -46, Y: -53},
	{Name: "Ivy Sutton", X: -52, Y: -44},
	{Name: "Oscar Reid", X: -58, Y: -57},
	{Name: "Amelia Perez", X: -82, Y: 42},
	{Name: "Jack Kelly", X: -85, Y: 38},
	{Name: "Aria Rivera", X: -78, Y: 41},
	{Name: "Daniel Bennett", X: -83, Y: 45},
	{Name: "Harper Ramos", X: -75, Y: 35},
	{Name: "Zoe Jenkins", X: 62, Y: -28},
	{Name: "David Gray", X: 58, Y: -30},
	{Name: "Scarlett Cox", X: 70, Y: -45},
	{Name: "Leo James", X: 60, Y: -25},
	{Name: "Michael Butler", X: 68, Y: 62},
	{Name: "Madison Price", X: 72, Y: 58},
	{Name: "Joshua Barnes", X: 75, Y: 65},
	{Name: "Evelyn Sanders", X: 70, Y: 60},
}

func ideologyFromSeed(e SeedEntry) domain.Ideology {
	return domain.Ideology{ID: domain.NoID, Name: e.Name, X: e.X, Y: e.Y}
}
