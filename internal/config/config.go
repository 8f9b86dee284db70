package config

import (
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/fardannozami/faccao-bot/internal/domain"
)

const defaultGoal = 1500

type Config struct {
	Port            string
	SQLitePath      string
	GroupID         string // facção group; membership and roles come from it
	RankingGroupID  string
	ReportGroupID   string
	BotPhone        string
	ReplyDelayMinMs int  // Minimum delay before reply (milliseconds)
	ReplyDelayMaxMs int  // Maximum delay before reply (milliseconds), 0 = use min as fixed
	ShowTyping      bool // Show typing indicator during delay
	LogLevel        string

	Timezone      string
	RankingCron   string
	ResetCron     string
	DepositWindow time.Duration
	ProofDir      string
	GoalsFile     string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults/environment variables")
	}

	return Config{
		Port:            getenv("PORT", "10000"),
		SQLitePath:      getenv("SQLITE_PATH", "./data/faccao.db"),
		GroupID:         getenv("GROUP_ID", ""),
		RankingGroupID:  getenv("RANKING_GROUP_ID", ""),
		ReportGroupID:   getenv("REPORT_GROUP_ID", ""),
		BotPhone:        getenv("BOT_PHONE", ""),
		ReplyDelayMinMs: getenvInt("REPLY_DELAY_MIN_MS", 0),
		ReplyDelayMaxMs: getenvInt("REPLY_DELAY_MAX_MS", 0),
		ShowTyping:      getenvBool("SHOW_TYPING", false),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		Timezone:        getenv("TIMEZONE", "America/Sao_Paulo"),
		// Ranking on Sunday evening, report and reset as Monday starts.
		RankingCron:   getenv("RANKING_CRON", "0 20 * * 0"),
		ResetCron:     getenv("RESET_CRON", "0 0 * * 1"),
		DepositWindow: time.Duration(getenvInt("DEPOSIT_WINDOW_SECONDS", 60)) * time.Second,
		ProofDir:      getenv("PROOF_DIR", "./data/proofs"),
		GoalsFile:     getenv("GOALS_FILE", "./config/goals.yaml"),
	}
}

// Location returns the timezone the weekly schedule is anchored to.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	return loc, errors.Annotatef(err, "timezone %q", c.Timezone)
}

// LoadGoals reads the role goal table from path. A missing file yields an
// empty table with the default goal.
func LoadGoals(path string) (domain.GoalTable, error) {
	table := domain.GoalTable{DefaultGoal: defaultGoal}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return table, nil
	}
	if err != nil {
		return table, errors.Annotate(err, "goals read")
	}
	if len(data) == 0 {
		return table, nil
	}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return table, errors.Annotate(err, "goals unmarshal")
	}
	if table.DefaultGoal < 0 {
		return table, errors.NotValidf("negative default_goal")
	}
	seen := make(map[string]bool, len(table.Roles))
	for _, rg := range table.Roles {
		if rg.Role == "" {
			return table, errors.NotValidf("role without name")
		}
		if rg.Goal < 0 {
			return table, errors.NotValidf("negative goal for role %q", rg.Role)
		}
		if seen[rg.Role] {
			return table, errors.NotValidf("duplicate role %q", rg.Role)
		}
		seen[rg.Role] = true
	}
	return table, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
