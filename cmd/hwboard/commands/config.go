package commands

import (
	"os"

	"hwboard-backend/lib/configutil"
)

const configName = "hwboard.json5"

type ClassroomAccount struct {
	Name        string `json:"name"`
	CookiesFile string `json:"cookies_file"`
}

type ClassroomConfig struct {
	BaseUrl  string             `json:"base_url"`
	Accounts []ClassroomAccount `json:"accounts"`
}

type JupiterConfig struct {
	BaseUrl string `json:"base_url"`
	Student string `json:"student"`
	// Password falls back to the JUPITER_PASSWORD environment variable
	// so the secret can live in .env instead of the config file.
	Password string   `json:"password"`
	Classes  []string `json:"classes"`
}

type DigestConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
}

type Config struct {
	Classroom    *ClassroomConfig `json:"classroom"`
	Jupiter      *JupiterConfig   `json:"jupiter"`
	OutputFile   string           `json:"output_file"`
	HtmlFile     string           `json:"html_file"`
	ColorsFile   string           `json:"colors_file"`
	LogFile      string           `json:"log_file"`
	HistoryDb    string           `json:"history_db"`
	HttpDebugDir string           `json:"http_debug_dir"`
	Digest       *DigestConfig    `json:"digest"`
}

func readConfig() (Config, error) {
	config, err := configutil.ReadRecursively[Config](configName)
	if err != nil {
		return config, err
	}

	if config.Jupiter != nil && config.Jupiter.Password == "" {
		config.Jupiter.Password = os.Getenv("JUPITER_PASSWORD")
	}
	return config, nil
}
