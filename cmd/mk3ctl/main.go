// Command mk3ctl is the staff tool for the works board: it lists works in
// board order, changes statuses and runs the finish pipeline against the API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"mk3hierros/internal/client"
	"mk3hierros/internal/log"
	"mk3hierros/internal/models"
	"mk3hierros/internal/security"
	"mk3hierros/internal/workflow"
)

const defaultCategoryID = 4

// errFinishRequired is returned when a status change must go through finish.
var errFinishRequired = errors.New("status Finalizado requires the finish command")

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.New(envOr("MK3_ENVIRONMENT", "development"), envOr("MK3CTL_LOG_LEVEL", "warn"))

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logger.Error().Err(err).Msg("mk3ctl failed")
		if errors.Is(err, errFinishRequired) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("mk3ctl", flag.ContinueOnError)
	global.SetOutput(stdout)
	apiURL := global.String("api", envOr("MK3CTL_API", "http://localhost:3000"), "API base URL")
	token := global.String("token", os.Getenv("MK3CTL_TOKEN"), "staff bearer token")
	global.Usage = func() {
		fmt.Fprintln(stdout, "usage: mk3ctl [-api URL] [-token T] <list|create|status|finish|images|token> [args]")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	if cmd == "token" {
		return runToken(rest, stdout)
	}

	api, err := client.New(*apiURL, *token, nil)
	if err != nil {
		return err
	}
	defer api.Close()

	switch cmd {
	case "list":
		return runList(ctx, api, stdout)
	case "create":
		return runCreate(ctx, api, rest, stdout)
	case "status":
		return runStatus(ctx, api, rest, stdout)
	case "finish":
		return runFinish(ctx, api, rest, stdout)
	case "images":
		return runImages(ctx, api, rest, stdout)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runList(ctx context.Context, api *client.Client, stdout io.Writer) error {
	works, err := api.ListWorks(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRIORITY\tSTATUS\tIMAGES")
	for _, w := range workflow.SortByStatus(works) {
		category := "-"
		if w.Category != nil {
			category = w.Category.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", w.ID, w.Title, category, w.Priority, w.Status, len(w.Images))
	}
	return tw.Flush()
}

func runCreate(ctx context.Context, api *client.Client, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(stdout)
	title := fs.String("title", "", "work title (required)")
	description := fs.String("description", "", "work description")
	measures := fs.String("measures", "", "measures")
	priority := fs.String("priority", string(models.PriorityMedium), "Baja, Media, Alta or Crítica")
	price := fs.Float64("price", 0, "quoted price")
	category := fs.Int64("category", defaultCategoryID, "category id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*title) == "" {
		return errors.New("-title is required")
	}

	work, err := api.CreateWork(ctx, models.WorkInput{
		Title:       *title,
		Description: *description,
		Measures:    *measures,
		CategoryID:  category,
		Priority:    *priority,
		Status:      string(models.StatusQuote),
		Price:       *price,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "created work %d (%s)\n", work.ID, work.Status)
	return nil
}

func runStatus(ctx context.Context, api *client.Client, args []string, stdout io.Writer) error {
	if len(args) < 2 {
		return errors.New("usage: status <work-id> <status>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	requested := models.Status(strings.Join(args[1:], " "))

	work, err := api.GetWork(ctx, id)
	if err != nil {
		return err
	}

	decision, err := workflow.AttemptTransition(work.Status, requested)
	if err != nil {
		return err
	}
	switch d := decision.(type) {
	case workflow.Unchanged:
		fmt.Fprintf(stdout, "work %d already %s\n", id, work.Status)
	case workflow.RedirectToFinish:
		fmt.Fprintf(stdout, "run: mk3ctl finish %d -title ... -description ... -category ... -image ...\n", id)
		return errFinishRequired
	case workflow.Allowed:
		to := d.To
		updated, err := api.UpdateWork(ctx, id, models.WorkPatch{Status: &to})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "work %d: %s -> %s\n", id, work.Status, updated.Status)
	}
	return nil
}

func runFinish(ctx context.Context, api *client.Client, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: finish <work-id> [flags]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("finish", flag.ContinueOnError)
	fs.SetOutput(stdout)
	title := fs.String("title", "", "marketing title")
	description := fs.String("description", "", "marketing description")
	category := fs.Int64("category", 0, "category id")
	var images stringList
	fs.Var(&images, "image", "image URL to keep or local file to upload (repeatable)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	report, err := workflow.NewFinisher(api).Finish(ctx, workflow.FinishRequest{
		WorkID:               id,
		MarketingTitle:       *title,
		MarketingDescription: *description,
		CategoryID:           *category,
		Images:               images,
	})
	if len(report.Steps) > 0 {
		fmt.Fprintln(stdout, report.String())
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "work %d finished\n", id)
	return nil
}

func runImages(ctx context.Context, api *client.Client, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: images <work-id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	images, err := api.ListImages(ctx, id)
	if err != nil {
		return err
	}
	for _, img := range images {
		link := img.URL
		if link == "" {
			link = api.ImageURL(id, img.ID)
		}
		fmt.Fprintf(stdout, "%d\t%s\t%s\n", img.Order, img.ImageName, link)
	}
	return nil
}

func runToken(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stdout)
	secret := fs.String("secret", os.Getenv("MK3_SECURITY_JWTSECRET"), "signing secret")
	name := fs.String("name", "", "staff member name")
	role := fs.String("role", security.RoleStaff, "staff or admin")
	ttl := fs.Duration("ttl", 720*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := security.GenerateStaffToken(*secret, *name, *role, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid work id %q", raw)
	}
	return id, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
