package types

import (
	"fmt"

	"github.com/cbodonnell/puzzleflow/pkg/log"
)

// GameType identifies the puzzle family a session is played on.
type GameType uint8

const (
	GameTypeUndefined GameType = iota
	GameTypeClassic
	GameTypeBusted
)

func (t GameType) String() string {
	switch t {
	case GameTypeUndefined:
		return "Undefined"
	case GameTypeClassic:
		return "Classic"
	case GameTypeBusted:
		return "Busted"
	}
	return "Unknown"
}

// AnalyticsString returns the name reported to analytics and the remote service.
func (t GameType) AnalyticsString() string {
	switch t {
	case GameTypeClassic:
		return "Classic_Game"
	case GameTypeBusted:
		return "Busted_Game"
	default:
		log.Debug("Couldn't convert game type %d to string", t)
		return ""
	}
}

// GameTypeFromAnalyticsString is the inverse of GameType.AnalyticsString.
// Unknown values map to GameTypeUndefined.
func GameTypeFromAnalyticsString(value string) GameType {
	switch value {
	case "Classic_Game":
		return GameTypeClassic
	case "Busted_Game":
		return GameTypeBusted
	default:
		log.Debug("Couldn't convert string '%s' to game type", value)
		return GameTypeUndefined
	}
}

// ParseGameType parses the String form of a game type (case sensitive).
func ParseGameType(value string) (GameType, error) {
	switch value {
	case "Classic", "classic":
		return GameTypeClassic, nil
	case "Busted", "busted":
		return GameTypeBusted, nil
	case "Undefined", "undefined", "":
		return GameTypeUndefined, nil
	}
	return GameTypeUndefined, fmt.Errorf("unknown game type: %s", value)
}

// GameSubtype is the session category.
type GameSubtype uint8

const (
	GameSubtypeCommon GameSubtype = iota
	// GameSubtypeToday is the daily challenge. At most one is saved regardless of type
	// and it is only valid on the local calendar day it was started.
	GameSubtypeToday
	GameSubtypeTutorial
)

func (s GameSubtype) String() string {
	switch s {
	case GameSubtypeCommon:
		return "Common"
	case GameSubtypeToday:
		return "Today"
	case GameSubtypeTutorial:
		return "Tutorial"
	}
	return "Unknown"
}

func (s GameSubtype) AnalyticsString() string {
	switch s {
	case GameSubtypeCommon:
		return "common_game"
	case GameSubtypeToday:
		return "today_training"
	default:
		return ""
	}
}

func ParseGameSubtype(value string) (GameSubtype, error) {
	switch value {
	case "Common", "common", "":
		return GameSubtypeCommon, nil
	case "Today", "today":
		return GameSubtypeToday, nil
	case "Tutorial", "tutorial":
		return GameSubtypeTutorial, nil
	}
	return GameSubtypeCommon, fmt.Errorf("unknown game subtype: %s", value)
}

type Difficulty uint8

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
	DifficultyExpert
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	case DifficultyExpert:
		return "Expert"
	}
	return "Unknown"
}

func ParseDifficulty(value string) (Difficulty, error) {
	switch value {
	case "Easy", "easy":
		return DifficultyEasy, nil
	case "Medium", "medium":
		return DifficultyMedium, nil
	case "Hard", "hard":
		return DifficultyHard, nil
	case "Expert", "expert":
		return DifficultyExpert, nil
	}
	return DifficultyEasy, fmt.Errorf("unknown difficulty: %s", value)
}
