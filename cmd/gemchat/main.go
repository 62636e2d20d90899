package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gemchat/cli/chat"
	"gemchat/cli/sessions"
	chatcore "gemchat/internal/chat"
	"gemchat/internal/configuration"
	"gemchat/internal/kvstore"
)

const configFilepath = "~/.config/gemchat/config.json"

var rootCmd = &cobra.Command{
	Use:     "gemchat",
	Short:   "A terminal client for Gemini chat sessions",
	Version: "1.0",
}

func main() {
	// A .env file may carry GEMINI_API_KEY; absence is fine.
	_ = godotenv.Load()

	config, err := configuration.Parse(configFilepath)
	if err != nil {
		panic(err)
	}

	kv, closeKV, err := openKV(config)
	if err != nil {
		panic(err)
	}
	defer closeKV()

	store := chatcore.NewStore(kv)

	rootCmd.AddCommand(chat.NewCmd(config, store))
	rootCmd.AddCommand(sessions.NewCmd(store))

	// Bare invocation opens the chat view.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "chat")
	}
	rootCmd.Execute()
}

// openKV opens the persistence backend named by the configuration.
func openKV(config *configuration.Config) (kvstore.KV, func() error, error) {
	switch config.Storage.Driver {
	case "sqlite":
		kv, err := kvstore.NewSQLiteKV(config.Storage.Database)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case "", "file":
		kv, err := kvstore.NewFileKV(config.Storage.Directory)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}
}
