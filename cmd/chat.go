/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thomascherickal/june/internal/june"
	"github.com/thomascherickal/june/internal/june/config"
	personapkg "github.com/thomascherickal/june/internal/june/persona"
)

var (
	model       string
	personaName string
	argFlags    []string
	systemFlag  string
	noStream    bool
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the configured model",
	Long: `Chat with the locally served model.

With a message argument, sends it as a single turn and prints the reply.
Without arguments, starts an interactive loop where each line is one turn
of an ongoing conversation; histories live in memory for the duration of
the process.

Interactive commands:
  /new        start a new conversation
  /id         show the current conversation id
  /contexts   list all live conversations
  /history    show the current conversation history
  /quit       exit

A persona file is a TOML file with the following structure:
system = "System prompt with optional {{key}} placeholders"
model = "optional-model-name"  # Optional: overrides the configured model
[sampling]                     # Optional: generation parameter overrides
temperature = 0.7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration from file
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		systemPrompt := cfg.SystemPrompt
		sampling := make(map[string]any, len(cfg.Sampling))
		for k, v := range cfg.Sampling {
			sampling[k] = v
		}

		// Apply persona: system prompt, optional model and sampling overrides
		if personaName != "" {
			persona, err := personapkg.Resolve(personaName, cfg.PersonaDirs, argFlags)
			if err != nil {
				return fmt.Errorf("resolving persona: %w", err)
			}
			systemPrompt = persona.System
			if persona.Model != nil {
				cfg.Model = *persona.Model
				if verbose {
					fmt.Fprintf(os.Stderr, "Using model from persona file: %s\n", cfg.Model)
				}
			}
			for k, v := range persona.Sampling {
				sampling[k] = v
			}
		}

		// Apply model with priority: flag > env > persona > config file
		envModel := os.Getenv("JUNE_MODEL")
		if cmd.Flags().Changed("model") {
			cfg.Model = model
		} else if envModel != "" {
			cfg.Model = envModel
		}

		if cmd.Flags().Changed("system") {
			systemPrompt = systemFlag
		}

		backend, err := newBackend(cfg)
		if err != nil {
			return fmt.Errorf("creating backend: %w", err)
		}

		storeOpts, err := cfg.GetStoreOptions()
		if err != nil {
			return err
		}

		var sink june.Sink
		if !noStream {
			sink = &consoleSink{out: os.Stdout}
		}

		engine := june.NewEngine(backend, june.EngineConfig{
			SystemPrompt: systemPrompt,
			Sampling:     sampling,
			Sink:         sink,
			Store:        storeOpts,
		})

		if verbose {
			fmt.Fprintf(os.Stderr, "Backend: %s\n", cfg.Backend)
			fmt.Fprintf(os.Stderr, "Model: %s\n", cfg.Model)
			if systemPrompt != "" {
				fmt.Fprintf(os.Stderr, "System prompt: %s\n", systemPrompt)
			}
		}

		// One-shot mode
		if len(args) > 0 {
			message := strings.Join(args, " ")
			reply, err := engine.Generate(message, "")
			if err != nil {
				return fmt.Errorf("chat request failed: %w", err)
			}
			if noStream {
				fmt.Println(reply.Content)
			}
			return nil
		}

		return runInteractive(engine)
	},
}

// runInteractive reads one message per line and keeps the conversation
// going until EOF or /quit.
func runInteractive(engine *june.Engine) error {
	fmt.Fprintln(os.Stderr, "Type a message and press enter. /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	contextID := ""
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runSlashCommand(engine, line, &contextID); quit {
				return nil
			}
			continue
		}

		reply, err := engine.Generate(line, contextID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if reply.ContextID != "" {
			contextID = reply.ContextID
			if verbose {
				fmt.Fprintf(os.Stderr, "Started conversation: %s\n", contextID)
			}
		}
		if noStream {
			fmt.Println(reply.Content)
		}
	}
	return scanner.Err()
}

// runSlashCommand handles the interactive commands; it returns true when
// the loop should exit.
func runSlashCommand(engine *june.Engine, line string, contextID *string) bool {
	switch line {
	case "/quit", "/exit":
		return true
	case "/new":
		*contextID = ""
		fmt.Fprintln(os.Stderr, "Starting a new conversation.")
	case "/id":
		if *contextID == "" {
			fmt.Fprintln(os.Stderr, "No conversation started yet.")
		} else {
			fmt.Println(*contextID)
		}
	case "/contexts":
		ids := engine.Contexts()
		if len(ids) == 0 {
			fmt.Fprintln(os.Stderr, "No live conversations.")
		}
		for _, id := range ids {
			fmt.Println(id)
		}
	case "/history":
		if *contextID == "" {
			fmt.Fprintln(os.Stderr, "No conversation started yet.")
			return false
		}
		history, err := engine.History(*contextID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		for _, msg := range history {
			fmt.Printf("%s: %s\n", msg.Role, msg.Content)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s (try /new, /id, /contexts, /history, /quit)\n", line)
	}
	return false
}

// consoleSink prints filtered stream fragments as they arrive.
type consoleSink struct {
	out io.Writer
}

func (s *consoleSink) OnChunk(text string, final bool) {
	fmt.Fprint(s.out, text)
	if final {
		fmt.Fprintln(s.out)
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)

	// Add command options
	chatCmd.Flags().StringVarP(&model, "model", "m", viper.GetString("model"), "Model to use (e.g. llama3.2)")
	chatCmd.Flags().StringVarP(&personaName, "persona", "p", "", "Name of the persona file (without .toml extension)")
	chatCmd.Flags().StringArrayVar(&argFlags, "arg", []string{}, "Key-value pairs for persona placeholders (format: key:value)")
	chatCmd.Flags().StringVar(&systemFlag, "system", "", "System prompt (overrides config and persona)")
	chatCmd.Flags().BoolVar(&noStream, "no-stream", false, "Print the full reply once generation finishes instead of streaming")
}
