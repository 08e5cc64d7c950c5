package util

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var adjectives = []string{
	"Lucky", "Bold", "Quiet", "Sharp", "Calm", "Clever", "Daring", "Happy", "Swift", "Royal", "Golden",
	"Silver", "Crimson", "Blue", "Jade", "Saffron", "Velvet", "Smiling", "Tall", "Grand", "Steady", "Wild",
	"Cunning", "Patient", "Brave", "Dapper", "Jolly", "Nimble", "Sly", "Stoic",
}

var animals = []string{
	"Tiger", "Peacock", "Elephant", "Mongoose", "Cobra", "Leopard", "Falcon", "Otter", "Panda", "Rhino",
	"Bison", "Heron", "Macaque", "Langur", "Gaur", "Kingfisher", "Myna", "Camel", "Yak", "Dolphin",
	"Owl", "Fox", "Wolf", "Bear", "Crane",
}

var (
	random     = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec
	randomLock sync.Mutex
)

// GetRandomName returns a random name by combining an adjective with an animal
// It is used as the display name of guests who join without one
func GetRandomName() string {
	randomLock.Lock()
	adjectivesIndex := random.Intn(len(adjectives))
	animalsIndex := random.Intn(len(animals))
	randomLock.Unlock()

	return fmt.Sprintf("%s %s", adjectives[adjectivesIndex], animals[animalsIndex])
}
