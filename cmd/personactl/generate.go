package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"persona-agent/internal/agent"
)

var (
	replyGate bool

	fudIntro     string
	fudReason    string
	fudClosing   string
	fudTokenInfo string
	fudTokenFile string
)

// decideCmd runs the decision engine on one post
var decideCmd = &cobra.Command{
	Use:   "decide TEXT",
	Short: "Decide whether the persona should respond to a post",
	Long:  `Prints "respond" or "ignore". Multiple arguments are joined with spaces.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDecide,
}

// postCmd generates an ambient post
var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Generate an ambient post",
	Args:  cobra.NoArgs,
	RunE:  runPost,
}

// replyCmd generates a reply to a post
var replyCmd = &cobra.Command{
	Use:   "reply TEXT",
	Short: "Generate a reply to a post",
	Long: `Generates a reply to TEXT. With --gate the decision engine is asked first
and nothing is generated when it answers "ignore".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReply,
}

// fudCmd groups the FUD strategies
var fudCmd = &cobra.Command{
	Use:   "fud",
	Short: "Generate cynical token commentary",
	Long: `Available subcommands:
  generic   - Weave an intro, a reason and a closing into one comment
  editorial - Comment on a token info blob using only its figures`,
}

var fudGenericCmd = &cobra.Command{
	Use:   "generic",
	Short: "Generate generic FUD from three fragments",
	Args:  cobra.NoArgs,
	RunE:  runFUDGeneric,
}

var fudEditorialCmd = &cobra.Command{
	Use:   "editorial",
	Short: "Generate editorialized FUD about a token",
	Long: `The token info is taken from --token-info, or read from --file
("-" reads standard input).`,
	Args: cobra.NoArgs,
	RunE: runFUDEditorial,
}

func init() {
	replyCmd.Flags().BoolVar(&replyGate, "gate", false, "Ask the decision engine before replying")

	fudGenericCmd.Flags().StringVar(&fudIntro, "intro", "", "Opening fragment")
	fudGenericCmd.Flags().StringVar(&fudReason, "reason", "", "Reason fragment")
	fudGenericCmd.Flags().StringVar(&fudClosing, "closing", "", "Closing fragment")

	fudEditorialCmd.Flags().StringVar(&fudTokenInfo, "token-info", "", "Token info text")
	fudEditorialCmd.Flags().StringVar(&fudTokenFile, "file", "", "Read token info from a file")
	fudEditorialCmd.MarkFlagsMutuallyExclusive("token-info", "file")

	fudCmd.AddCommand(fudGenericCmd)
	fudCmd.AddCommand(fudEditorialCmd)
}

func runDecide(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	gen, err := generators(ctx)
	if err != nil {
		return err
	}
	decision, err := gen.ShouldRespond(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), decision)
	return nil
}

func runPost(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	gen, err := generators(ctx)
	if err != nil {
		return err
	}
	text, err := gen.GeneratePost(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runReply(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	gen, err := generators(ctx)
	if err != nil {
		return err
	}
	source := strings.Join(args, " ")
	if replyGate {
		decision, err := gen.ShouldRespond(ctx, source)
		if err != nil {
			return err
		}
		if decision == agent.Ignore {
			fmt.Fprintln(cmd.ErrOrStderr(), "decision: ignore")
			return nil
		}
	}
	text, err := gen.GenerateReply(ctx, source)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runFUDGeneric(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	gen, err := generators(ctx)
	if err != nil {
		return err
	}
	text, err := gen.GenerateGenericFUD(ctx, fudIntro, fudReason, fudClosing)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runFUDEditorial(cmd *cobra.Command, _ []string) error {
	tokenInfo := fudTokenInfo
	if fudTokenFile != "" {
		var (
			data []byte
			err  error
		)
		if fudTokenFile == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(fudTokenFile)
		}
		if err != nil {
			return fmt.Errorf("read token info: %w", err)
		}
		tokenInfo = string(data)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	gen, err := generators(ctx)
	if err != nil {
		return err
	}
	text, err := gen.GenerateEditorializedFUD(ctx, tokenInfo)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
