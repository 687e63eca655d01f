package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aussiebroadwan/imeet/pkg/auth"
	"github.com/aussiebroadwan/imeet/pkg/session"
	"github.com/aussiebroadwan/imeet/pkg/statusmsg"
)

// ErrUsage is returned for unknown commands or bad arguments.
var ErrUsage = errors.New("usage")

const usage = `usage: imeet <command> [flags]

commands:
  login         log in with email and password
  signup        create an account
  status        reconcile and print the current session
  validate      check the stored token with the backend
  logout        end the current session
  passwd        change the account password
  hosted-login  start a hosted UI (OAuth2) login
  callback      finish a hosted UI login (-session JSESSIONID)
  avatar        upload <file> | remove
  whoami        print the cached identity without contacting the backend
`

type command func(ctx context.Context, args []string) error

func (app *Application) commands() map[string]command {
	return map[string]command{
		"login":        app.cmdLogin,
		"signup":       app.cmdSignup,
		"status":       app.cmdStatus,
		"validate":     app.cmdValidate,
		"logout":       app.cmdLogout,
		"passwd":       app.cmdPasswd,
		"hosted-login": app.cmdHostedLogin,
		"callback":     app.cmdCallback,
		"avatar":       app.cmdAvatar,
		"whoami":       app.cmdWhoami,
	}
}

// Run executes one command.
func (app *Application) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(app.stderr, usage)
		return ErrUsage
	}

	cmd, ok := app.commands()[args[0]]
	if !ok {
		fmt.Fprint(app.stderr, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return cmd(ctx, args[1:])
}

func (app *Application) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("imeet "+name, flag.ContinueOnError)
	fs.SetOutput(app.stderr)
	return fs
}

func (app *Application) say(key string, args ...any) {
	fmt.Fprintln(app.stdout, app.msgs.Text(key, args...))
}

// prompt reads one line from stdin when value is empty.
func (app *Application) prompt(value *string, label string, in *bufio.Reader) error {
	if *value != "" {
		return nil
	}
	fmt.Fprintf(app.stderr, "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return fmt.Errorf("read %s: %w", label, err)
	}
	*value = strings.TrimRight(line, "\r\n")
	return nil
}

func (app *Application) cmdLogin(ctx context.Context, args []string) error {
	fs := app.flagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	in := bufio.NewReader(app.stdin)
	if err := app.prompt(email, "email", in); err != nil {
		return err
	}
	if err := app.prompt(password, "password", in); err != nil {
		return err
	}

	resp, err := app.service.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	app.say(statusmsg.KeyLoginSuccess)
	app.say(statusmsg.KeyStatusAuthenticated, displayName(resp.FullName, resp.Username), resp.Email)
	return nil
}

func (app *Application) cmdSignup(ctx context.Context, args []string) error {
	fs := app.flagSet("signup")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")
	fullName := fs.String("full-name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	in := bufio.NewReader(app.stdin)
	for _, p := range []struct {
		v     *string
		label string
	}{{email, "email"}, {username, "username"}, {password, "password"}} {
		if err := app.prompt(p.v, p.label, in); err != nil {
			return err
		}
	}

	if _, err := app.service.Signup(ctx, *username, *email, *password, *fullName); err != nil {
		return err
	}
	app.say(statusmsg.KeySignupSuccess)
	return nil
}

func (app *Application) cmdStatus(ctx context.Context, args []string) error {
	fs := app.flagSet("status")
	asJSON := fs.Bool("json", false, "print the status as JSON")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	st := app.service.IsAuthenticated(ctx)
	if *asJSON {
		return app.printJSON(statusView{Authenticated: st.Authenticated, Type: st.Type, User: st.User})
	}

	if !st.Authenticated {
		app.say(statusmsg.KeyStatusAnonymous)
		return nil
	}
	app.say(statusmsg.KeyStatusAuthenticated, st.User.DisplayName(), st.Type)
	return nil
}

type statusView struct {
	Authenticated bool                `json:"authenticated"`
	Type          auth.Type           `json:"type,omitempty"`
	User          *session.UserRecord `json:"user,omitempty"`
}

func (app *Application) cmdValidate(ctx context.Context, args []string) error {
	if err := app.flagSet("validate").Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	v := app.service.ValidateToken(ctx)
	if !v.Valid {
		return fmt.Errorf("%w: %s", auth.ErrTokenInvalid, v.Message)
	}
	app.say(statusmsg.KeyStatusAuthenticated, displayName(v.Data.FullName, v.Data.Username), v.Data.Email)
	return nil
}

func (app *Application) cmdLogout(ctx context.Context, args []string) error {
	if err := app.flagSet("logout").Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if !app.service.Logout(ctx) {
		return errors.New(app.msgs.Text(statusmsg.KeyLogoutFailed))
	}
	app.say(statusmsg.KeyLogoutSuccess)
	return nil
}

func (app *Application) cmdPasswd(ctx context.Context, args []string) error {
	fs := app.flagSet("passwd")
	current := fs.String("current", "", "current password (prompted when empty)")
	next := fs.String("new", "", "new password (prompted when empty)")
	confirm := fs.String("confirm", "", "new password again (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	in := bufio.NewReader(app.stdin)
	for _, p := range []struct {
		v     *string
		label string
	}{{current, "current password"}, {next, "new password"}, {confirm, "confirm new password"}} {
		if err := app.prompt(p.v, p.label, in); err != nil {
			return err
		}
	}

	app.say(statusmsg.KeyPasswordCheckingToken)
	app.say(statusmsg.KeyPasswordChanging)
	if _, err := app.service.ChangePassword(ctx, *current, *next, *confirm); err != nil {
		return err
	}
	app.say(statusmsg.KeyPasswordChanged)
	return nil
}

func (app *Application) cmdHostedLogin(ctx context.Context, args []string) error {
	if err := app.flagSet("hosted-login").Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	app.service.InitiateHostedUILogin(ctx)
	return nil
}

func (app *Application) cmdCallback(ctx context.Context, args []string) error {
	fs := app.flagSet("callback")
	sid := fs.String("session", "", "JSESSIONID from the browser that completed the hosted login")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *sid != "" {
		if err := app.client.SetSessionCookie(*sid); err != nil {
			return err
		}
	}

	app.say(statusmsg.KeyCallbackWaiting)
	u := app.service.HandleHostedUICallback(ctx)
	if u == nil {
		return errors.New(app.msgs.Text(statusmsg.KeyCallbackFailed))
	}
	app.say(statusmsg.KeyCallbackSuccess)
	app.say(statusmsg.KeyStatusAuthenticated, u.DisplayName(), u.Email)
	return nil
}

func (app *Application) cmdAvatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: avatar upload <file> | avatar remove", ErrUsage)
	}

	switch args[0] {
	case "upload":
		if len(args) != 2 {
			return fmt.Errorf("%w: avatar upload <file>", ErrUsage)
		}
		return app.uploadAvatar(ctx, args[1])
	case "remove":
		if _, err := app.service.RemoveAvatar(ctx); err != nil {
			return err
		}
		app.say(statusmsg.KeyAvatarRemoved)
		return nil
	}
	return fmt.Errorf("%w: unknown avatar command %q", ErrUsage, args[0])
}

func (app *Application) uploadAvatar(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open avatar: %w", err)
	}
	defer f.Close()

	contentType, err := detectContentType(f, path)
	if err != nil {
		return err
	}

	resp, err := app.service.UploadAvatar(ctx, filepath.Base(path), contentType, f)
	if err != nil {
		return err
	}
	app.say(statusmsg.KeyAvatarUploaded)
	fmt.Fprintln(app.stdout, resp.AvatarURL)
	return nil
}

// detectContentType sniffs the file, falling back to its extension, and
// rewinds it.
func detectContentType(f *os.File, path string) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind avatar: %w", err)
	}

	ct := http.DetectContentType(head[:n])
	if ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
			ct = byExt
		}
	}
	return ct, nil
}

func (app *Application) cmdWhoami(ctx context.Context, args []string) error {
	if err := app.flagSet("whoami").Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if u := app.service.GetOAuth2User(ctx); u != nil {
		return app.printJSON(u)
	}
	if u := app.service.GetUserFromStorage(ctx); u != nil {
		return app.printJSON(u)
	}
	app.say(statusmsg.KeyStatusAnonymous)
	return nil
}

func (app *Application) printJSON(v any) error {
	enc := json.NewEncoder(app.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func displayName(fullName, username string) string {
	if fullName != "" {
		return fullName
	}
	return username
}
