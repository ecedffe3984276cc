package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayush/todolist/backend/internal/client"
	"github.com/ayush/todolist/backend/internal/models"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		pw, err := password(cmd)
		if err != nil {
			return err
		}
		if err := newAPI().Register(cmd.Context(), username, email, pw); err != nil {
			return err
		}
		ok("registered " + email + ", now run `todo login`")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and switch to the synced list",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		pw, err := password(cmd)
		if err != nil {
			return err
		}
		token, err := newAPI().Login(cmd.Context(), email, pw)
		if err != nil {
			return err
		}
		if err := writeToken(token); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		m, err := openMirror(cmd.Context())
		if err != nil {
			return err
		}
		ok(fmt.Sprintf("signed in as %s (%d todos)", email, len(m.Todos())))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and switch back to the local list",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := readToken()
		if token == "" {
			warn("not signed in")
			return nil
		}
		api := newAPI()
		api.SetToken(token)
		if err := api.Logout(cmd.Context()); err != nil {
			warn("server logout failed: " + err.Error())
		}
		if err := removeToken(); err != nil {
			return err
		}
		ok("signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := readToken()
		if token == "" {
			fmt.Println(mutedStyle.Render("not signed in (local list at " + dataPath("todos.json") + ")"))
			return nil
		}
		api := newAPI()
		api.SetToken(token)
		email, err := api.Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", email, mutedStyle.Render("@ "+viper.GetString("server")))
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "Show the list",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openMirror(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(renderList(m.Todos(), m.SignedIn()))
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Add a todo",
	Args:  cobra.MinimumNArgs(1),
	RunE: withMirror(func(ctx context.Context, m *client.Mirror, args []string) error {
		return m.Add(ctx, strings.Join(args, " "))
	}),
}

var doneCmd = &cobra.Command{
	Use:   "done <n>",
	Short: "Toggle the completed state of todo n",
	Args:  cobra.ExactArgs(1),
	RunE: withMirror(func(ctx context.Context, m *client.Mirror, args []string) error {
		id, err := pick(m, args[0])
		if err != nil {
			return err
		}
		return m.Toggle(ctx, id)
	}),
}

var editCmd = &cobra.Command{
	Use:   "edit <n> <text...>",
	Short: "Replace the text of todo n",
	Args:  cobra.MinimumNArgs(2),
	RunE: withMirror(func(ctx context.Context, m *client.Mirror, args []string) error {
		id, err := pick(m, args[0])
		if err != nil {
			return err
		}
		return m.Edit(ctx, id, strings.Join(args[1:], " "))
	}),
}

var rmCmd = &cobra.Command{
	Use:     "rm <n>",
	Aliases: []string{"delete"},
	Short:   "Delete todo n",
	Args:    cobra.ExactArgs(1),
	RunE: withMirror(func(ctx context.Context, m *client.Mirror, args []string) error {
		id, err := pick(m, args[0])
		if err != nil {
			return err
		}
		return m.Delete(ctx, id)
	}),
}

var clearCmd = &cobra.Command{
	Use:   "clear [all|YYYY-MM-DD]",
	Short: "Delete every todo, or those created on one day",
	Args:  cobra.MaximumNArgs(1),
	RunE: withMirror(func(ctx context.Context, m *client.Mirror, args []string) error {
		block := models.ClearAll
		if len(args) == 1 {
			block = args[0]
		}
		return m.Clear(ctx, block)
	}),
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().String("email", "", "account email")
		c.Flags().String("password", "", "account password (or TODO_PASSWORD)")
		_ = c.MarkFlagRequired("email")
	}
	registerCmd.Flags().String("username", "", "display name")
	_ = registerCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd,
		lsCmd, addCmd, doneCmd, editCmd, rmCmd, clearCmd)
}

// withMirror opens the list, runs fn and prints the resulting list.
func withMirror(fn func(ctx context.Context, m *client.Mirror, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		m, err := openMirror(cmd.Context())
		if err != nil {
			return err
		}
		if err := fn(cmd.Context(), m, args); err != nil {
			return err
		}
		fmt.Println(renderList(m.Todos(), m.SignedIn()))
		return nil
	}
}

// pick maps a 1-based position in the displayed list to a todo id.
func pick(m *client.Mirror, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	todos := m.Todos()
	if err != nil || n < 1 || n > len(todos) {
		return "", fmt.Errorf("no todo #%s (the list has %d)", arg, len(todos))
	}
	return todos[n-1].ID, nil
}

// password reads --password, falling back to TODO_PASSWORD or the config file.
func password(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	if p := viper.GetString("password"); p != "" {
		return p, nil
	}
	return "", errNoPassword
}

var errNoPassword = errors.New("password required: pass --password or set TODO_PASSWORD")
