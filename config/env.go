package config

import "os"

var Envs = struct {
	ADDR                string
	ALLOWED_ORIGINS     string
	POSTGRES_URL        string
	ROOM_TOKEN_KEY      string
	REQUIRE_ROOM_TOKENS string
	GIN_MODE            string
}{
	ADDR:                os.Getenv("ADDR"),
	ALLOWED_ORIGINS:     os.Getenv("ALLOWED_ORIGINS"),
	POSTGRES_URL:        os.Getenv("POSTGRES_URL"),
	ROOM_TOKEN_KEY:      os.Getenv("ROOM_TOKEN_KEY"),
	REQUIRE_ROOM_TOKENS: os.Getenv("REQUIRE_ROOM_TOKENS"),
	GIN_MODE:            os.Getenv("GIN_MODE"),
}
