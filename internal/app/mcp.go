package app

import (
	"os"

	"github.com/blackwell-systems/focuscoach/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server",
	Long: `Start a Model Context Protocol stdio server that an assistant can
query. Tools act on behalf of the configured user_id:

  get_session_suggestion  Recommended length for the next focus session
  get_focus_metrics       Completion rate, streaks, and daily stats
  get_recent_sessions     Last N finished sessions

Example MCP client configuration:
  {"mcpServers":{"focuscoach":{"command":"focuscoach","args":["mcp"]}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	srv := mcp.NewServer(e.svc, e.db, e.cfg.UserID, e.logger.Named("mcp"))
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
