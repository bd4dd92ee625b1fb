package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrOwnerNotFound     = errors.New("owner not found")
	ErrGameNotFound      = errors.New("game not found")
	ErrContainerNotFound = errors.New("container not found")
	ErrAPIKeyConflict    = errors.New("api key conflict")
)

// APIKeyPrefix prefixes every server API key.
const APIKeyPrefix = "RBXG-"

type Owner struct {
	ID    uuid.UUID
	Email string
}

// Game is a Roblox experience registered by an owner.
// An empty ServerAPIKey means a key hasn't been issued yet.
type Game struct {
	ID           string
	Name         string
	OwnerID      uuid.UUID
	ServerAPIKey string
	Containers   []Container
}

// HasAPIKey reports whether the game can be packaged.
func (g *Game) HasAPIKey() bool {
	return g.ServerAPIKey != ""
}

type ContainerType string

const (
	ContainerTypeDisplay  ContainerType = "DISPLAY"
	ContainerTypeNPC      ContainerType = "NPC"
	ContainerTypeMinigame ContainerType = "MINIGAME"
)

// ContainerTypeFromString returns the container type and whether it is known.
func ContainerTypeFromString(s string) (ContainerType, bool) {
	switch t := ContainerType(strings.ToUpper(s)); t {
	case ContainerTypeDisplay, ContainerTypeNPC, ContainerTypeMinigame:
		return t, true
	default:
		return t, false
	}
}

// Position is a point in the experience's world space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Container is an ad placement inside a game.
// Position is nil until the engine reports one.
type Container struct {
	ID       string
	GameID   string
	Name     string
	Type     ContainerType
	Status   string
	Position *Position
}

// NewAPIKey returns a fresh server API key read from random.
// If random is nil, crypto/rand is used.
func NewAPIKey(random io.Reader) (string, error) {
	if random == nil {
		random = rand.Reader
	}
	b := make([]byte, 16)
	if _, err := io.ReadFull(random, b); err != nil {
		return "", fmt.Errorf("new api key: %w", err)
	}
	return APIKeyPrefix + hex.EncodeToString(b), nil
}

// IsAPIKey reports whether s looks like a server API key.
func IsAPIKey(s string) bool {
	return strings.HasPrefix(s, APIKeyPrefix) && len(s) > len(APIKeyPrefix)
}
