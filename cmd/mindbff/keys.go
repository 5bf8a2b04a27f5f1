package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/mindbff/backend/internal/config"
	"github.com/zhouzirui/mindbff/backend/internal/model/keys"
	"github.com/zhouzirui/mindbff/backend/internal/settings"
	"github.com/zhouzirui/mindbff/backend/internal/store/keystore"
)

type keyOptions struct {
	Chat  string
	Voice string
	Clear bool
}

func addKeys(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Show or change the API keys",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the stored keys, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := loadSettings()
			if err != nil {
				return err
			}
			printKeys(cmd.OutOrStdout(), handle.Keys())
			return nil
		},
	}

	ko := &keyOptions{}
	set := &cobra.Command{
		Use:   "set",
		Short: "Store the OpenAI and ElevenLabs keys",
		Example: `
mindbff keys set --chat sk-... --voice xi-...
mindbff keys set --clear
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ko.Clear && ko.Chat == "" && ko.Voice == "" {
				return errors.New("pass --chat, --voice or --clear")
			}
			handle, err := loadSettings()
			if err != nil {
				return err
			}
			pair := handle.Keys()
			if ko.Clear {
				pair = keys.Pair{}
			}
			if ko.Chat != "" {
				pair.ChatKey = ko.Chat
			}
			if ko.Voice != "" {
				pair.VoiceKey = ko.Voice
			}
			if err := handle.Save(pair); err != nil {
				return err
			}
			printKeys(cmd.OutOrStdout(), handle.Keys())
			return nil
		},
	}
	set.Flags().StringVar(&ko.Chat, "chat", "", "OpenAI API key used for chat and journal insights")
	set.Flags().StringVar(&ko.Voice, "voice", "", "ElevenLabs API key used for the voice companion")
	set.Flags().BoolVar(&ko.Clear, "clear", false, "remove both keys before applying the others")

	cmd.AddCommand(show, set)
	topLevel.AddCommand(cmd)
}

func loadSettings() (*settings.Handle, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	ks, err := keystore.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	return settings.Load(ks), nil
}

func printKeys(w io.Writer, pair keys.Pair) {
	title := color.New(color.Bold, color.Underline)
	ok := color.New(color.FgGreen)
	missing := color.New(color.FgRed, color.Faint)

	_, _ = title.Fprintln(w, "API keys")
	masked := pair.Masked()
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, row := range []struct {
		name  string
		value string
	}{
		{"OpenAI", masked.ChatKey},
		{"ElevenLabs", masked.VoiceKey},
	} {
		if row.value == "" {
			tbl.AddRow(row.name, missing.Sprint("not set"))
			continue
		}
		tbl.AddRow(row.name, ok.Sprint(row.value))
	}
	_, _ = fmt.Fprintln(w, tbl)
	if !pair.Complete() {
		_, _ = fmt.Fprintln(w, "\nSome features stay unavailable until both keys are set.")
	}
}
