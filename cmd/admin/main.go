// Command admin manages administrators and works the moderation queue from
// the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/middleware"
	"agora/internal/moderation"
	"agora/internal/repository"
	"agora/internal/service"
)

const usageText = `Usage:
  go run ./cmd/admin promote <user_id>                     - Promote user to admin
  go run ./cmd/admin demote <user_id>                      - Demote user from admin
  go run ./cmd/admin list-admins                           - List all admins
  go run ./cmd/admin -as <admin_id> reports                - Show the moderation queue
  go run ./cmd/admin -as <admin_id> resolve <report_id> [approve|reject]
`

type app struct {
	users      *service.UserService
	moderation *service.ModerationService
	actingAs   uint
}

func main() {
	actingAs := flag.Uint("as", 0, "admin user id recorded as the resolver")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	middleware.SetupLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, rdb, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	events, closeEvents := bootstrap.EventPublisher(cfg, rdb, nil)
	defer closeEvents()

	users := service.NewUserService(repository.NewUserRepository(db))
	a := &app{
		users: users,
		moderation: service.NewModerationService(
			repository.NewReportRepository(db),
			repository.NewPostRepository(db),
			events,
			cfg.ReportQueueCacheTTL(),
		),
		actingAs: *actingAs,
	}

	if err := a.run(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	switch args[0] {
	case "promote", "demote":
		if len(args) < 2 {
			return fmt.Errorf("usage: %s <user_id>", args[0])
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if args[0] == "promote" {
			u, err := a.users.Promote(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("Promoted %s (ID: %d) to admin\n", u.Name, u.ID)
			return nil
		}
		u, err := a.users.Demote(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Demoted %s (ID: %d) from admin\n", u.Name, u.ID)
		return nil

	case "list-admins":
		admins, err := a.users.ListAdmins(ctx)
		if err != nil {
			return err
		}
		if len(admins) == 0 {
			fmt.Println("No admins found")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL")
		for _, u := range admins {
			fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
		}
		return w.Flush()

	case "reports":
		actor, err := a.actor(ctx)
		if err != nil {
			return err
		}
		queue, err := a.moderation.ReportedContent(ctx, actor)
		if err != nil {
			return err
		}
		if len(queue) == 0 {
			fmt.Println("The moderation queue is empty")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REPORT\tPOST\tREPORTS\tLAST REPORTED\tREASON\tTITLE")
		for _, e := range queue {
			fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%s\n",
				e.ReportID, e.ID, e.ReportCount, e.LastReportDate.Format(time.RFC3339), e.ReportReason, e.Title)
		}
		return w.Flush()

	case "resolve":
		if len(args) < 2 {
			return fmt.Errorf("usage: resolve <report_id> [approve|reject]")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		raw := ""
		if len(args) > 2 {
			raw = args[2]
		}
		action, err := moderation.ParseAction(raw)
		if err != nil {
			return err
		}
		actor, err := a.actor(ctx)
		if err != nil {
			return err
		}
		res, err := a.moderation.ResolveReport(ctx, actor, id, action)
		if err != nil {
			return err
		}
		fmt.Printf("%s (report %d, post %d, %d sibling reports closed)\n",
			res.Outcome.Message(), res.ReportID, res.PostID, res.Cascaded)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usageText)
	}
}

// actor checks that -as names an admin before acting on the queue.
func (a *app) actor(ctx context.Context) (moderation.Actor, error) {
	if a.actingAs == 0 {
		return moderation.Actor{}, fmt.Errorf("-as <admin_id> is required for moderation commands")
	}
	admin, err := a.users.IsAdmin(ctx, a.actingAs)
	if err != nil {
		return moderation.Actor{}, err
	}
	return moderation.Actor{UserID: a.actingAs, IsAdmin: admin}, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}
