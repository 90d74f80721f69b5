package game

import (
	"fmt"

	"github.com/cbodonnell/puzzleflow/pkg/game/types"
)

// ScoreConfig describes how a finished session is scored.
type ScoreConfig struct {
	Base           int `mapstructure:"base" json:"base"`
	HintPenalty    int `mapstructure:"hint_penalty" json:"hintPenalty"`
	MistakePenalty int `mapstructure:"mistake_penalty" json:"mistakePenalty"`
	// TimeBonus is awarded per second left on the clock of a won timed session.
	TimeBonus int `mapstructure:"time_bonus" json:"timeBonus"`
}

func (c ScoreConfig) Record() *Record {
	r := NewRecord()
	r.AddField("base", c.Base)
	r.AddField("hintPenalty", c.HintPenalty)
	r.AddField("mistakePenalty", c.MistakePenalty)
	r.AddField("timeBonus", c.TimeBonus)
	return r
}

func scoreConfigFromRecord(r *Record) (ScoreConfig, error) {
	var c ScoreConfig
	var err error
	if c.Base, err = r.GetInt("base"); err != nil {
		return c, err
	}
	if c.HintPenalty, err = r.GetInt("hintPenalty"); err != nil {
		return c, err
	}
	if c.MistakePenalty, err = r.GetInt("mistakePenalty"); err != nil {
		return c, err
	}
	if c.TimeBonus, err = r.GetInt("timeBonus"); err != nil {
		return c, err
	}
	return c, nil
}

// TimeConfig describes the clock of a session. A zero LimitSeconds means untimed.
type TimeConfig struct {
	LimitSeconds   int `mapstructure:"limit_seconds" json:"limitSeconds"`
	WarningSeconds int `mapstructure:"warning_seconds" json:"warningSeconds"`
}

func (c TimeConfig) Record() *Record {
	r := NewRecord()
	r.AddField("limit", c.LimitSeconds)
	r.AddField("warning", c.WarningSeconds)
	return r
}

func timeConfigFromRecord(r *Record) (TimeConfig, error) {
	var c TimeConfig
	var err error
	if c.LimitSeconds, err = r.GetInt("limit"); err != nil {
		return c, err
	}
	if c.WarningSeconds, err = r.GetInt("warning"); err != nil {
		return c, err
	}
	return c, nil
}

// Config is the identity of a session.
// The level id may change until the config is embedded in a session; after that
// every identity field is fixed.
type Config struct {
	gameType      types.GameType
	subtype       types.GameSubtype
	difficulty    types.Difficulty
	levelID       string
	scoreConfig   ScoreConfig
	timeConfig    TimeConfig
	freeLiveCount int
	freeHintCount int
	noMistakeMode bool
	frozen        bool
}

// NewConfigOptions contains options for creating a new Config.
type NewConfigOptions struct {
	Type          types.GameType
	Subtype       types.GameSubtype
	Difficulty    types.Difficulty
	LevelID       string
	ScoreConfig   ScoreConfig
	TimeConfig    TimeConfig
	FreeLiveCount int
	FreeHintCount int
}

func NewConfig(opts NewConfigOptions) *Config {
	return &Config{
		gameType:      opts.Type,
		subtype:       opts.Subtype,
		difficulty:    opts.Difficulty,
		levelID:       opts.LevelID,
		scoreConfig:   opts.ScoreConfig,
		timeConfig:    opts.TimeConfig,
		freeLiveCount: max(0, opts.FreeLiveCount),
		freeHintCount: max(0, opts.FreeHintCount),
	}
}

func (c *Config) Type() types.GameType          { return c.gameType }
func (c *Config) Subtype() types.GameSubtype    { return c.subtype }
func (c *Config) Difficulty() types.Difficulty  { return c.difficulty }
func (c *Config) LevelID() string               { return c.levelID }
func (c *Config) ScoreConfig() ScoreConfig      { return c.scoreConfig }
func (c *Config) TimeConfig() TimeConfig        { return c.timeConfig }
func (c *Config) FreeLiveCount() int            { return c.freeLiveCount }
func (c *Config) FreeHintCount() int            { return c.freeHintCount }
func (c *Config) IsNoMistakeMode() bool         { return c.noMistakeMode }
func (c *Config) SetNoMistakeMode(enabled bool) { c.noMistakeMode = enabled }

// SetLevelID changes the level reference. It reports false once the config
// belongs to a session.
func (c *Config) SetLevelID(id string) bool {
	if c.frozen {
		return false
	}
	c.levelID = id
	return true
}

// Key returns the saved-slot key of the config.
func (c *Config) Key() SlotKey {
	return SlotKey{Type: c.gameType, Subtype: c.subtype}
}

func (c *Config) freeze() {
	c.frozen = true
}

func (c *Config) Record() *Record {
	r := NewRecord()
	r.AddField("type", int(c.gameType))
	r.AddField("subtype", int(c.subtype))
	r.AddField("difficulty", int(c.difficulty))
	r.AddField("scoreConfig", c.scoreConfig.Record())
	r.AddField("timeConfig", c.timeConfig.Record())
	r.AddField("health", c.freeLiveCount)
	r.AddField("hintCount", c.freeHintCount)
	r.AddField("levelId", c.levelID)
	r.AddField("noMistakeMode", c.noMistakeMode)
	return r
}

func (c *Config) Serialize() string {
	return c.Record().String()
}

// ParseConfig parses the text produced by Config.Serialize.
func ParseConfig(data string) (*Config, error) {
	r, err := ParseRecord(data)
	if err != nil {
		return nil, err
	}
	return ConfigFromRecord(r)
}

func ConfigFromRecord(r *Record) (*Config, error) {
	gameType, err := r.GetInt("type")
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}
	subtype, err := r.GetInt("subtype")
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}
	difficulty, err := r.GetInt("difficulty")
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}

	scoreRecord, err := r.GetRecord("scoreConfig")
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}
	scoreConfig, err := scoreConfigFromRecord(scoreRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to read score config: %v", err)
	}

	timeRecord, err := r.GetRecord("timeConfig")
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}
	timeConfig, err := timeConfigFromRecord(timeRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to read time config: %v", err)
	}

	health, err := r.GetInt("health")
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}
	hintCount, err := r.GetInt("hintCount")
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}
	levelID, err := r.GetString("levelId")
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}

	config := NewConfig(NewConfigOptions{
		Type:          types.GameType(gameType),
		Subtype:       types.GameSubtype(subtype),
		Difficulty:    types.Difficulty(difficulty),
		LevelID:       levelID,
		ScoreConfig:   scoreConfig,
		TimeConfig:    timeConfig,
		FreeLiveCount: health,
		FreeHintCount: hintCount,
	})
	// older saves carry no flag
	if r.Has("noMistakeMode") {
		noMistakeMode, err := r.GetBool("noMistakeMode")
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %v", err)
		}
		config.noMistakeMode = noMistakeMode
	}

	return config, nil
}

// Equal compares every identity and value field.
func (c *Config) Equal(other *Config) bool {
	return c.gameType == other.gameType &&
		c.subtype == other.subtype &&
		c.difficulty == other.difficulty &&
		c.levelID == other.levelID &&
		c.scoreConfig == other.scoreConfig &&
		c.timeConfig == other.timeConfig &&
		c.freeLiveCount == other.freeLiveCount &&
		c.freeHintCount == other.freeHintCount &&
		c.noMistakeMode == other.noMistakeMode
}

// SlotKey addresses a saved session slot.
type SlotKey struct {
	Type    types.GameType
	Subtype types.GameSubtype
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s/%s", k.Type, k.Subtype)
}
