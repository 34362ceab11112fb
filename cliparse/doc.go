// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string or sqlite file (default: quickly-pulse.db)
  - DatabaseType: sqlite (default) or postgres
  - PresenterKeySalt: Secret for presenter key HMAC (required)
  - OpenAIKey, OpenAIModel, OpenAIBaseURL: synthesis collaborator
  - SynthesisTokenBudget: token cap per synthesis request (default: 100000)

# CLI Flags

	-env            dotenv file (default .env)
	-p              Server port
	-d              Database URL
	-t              Database type
	-presenter-salt Presenter key salt
	-openai-key     OpenAI API key
	-openai-model   OpenAI model
	-openai-url     OpenAI-compatible base URL
	-token-budget   Synthesis token budget

# Environment Variables

Flags fall back to environment variables, which may come from the dotenv
file. Variables already set in the process environment win over the file.

	PORT                   → -p
	DATABASE_URL           → -d
	DATABASE_TYPE          → -t
	PRESENTER_KEY_SALT     → -presenter-salt
	OPENAI_API_KEY         → -openai-key
	OPENAI_MODEL           → -openai-model
	OPENAI_BASE_URL        → -openai-url
	SYNTHESIS_TOKEN_BUDGET → -token-budget

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - PRESENTER_KEY_SALT is missing
  - DATABASE_TYPE is postgres and no URL is given
  - PORT or SYNTHESIS_TOKEN_BUDGET do not parse

Synthesis endpoints answer 503 when no OpenAI key is configured.
*/
package cliparse
