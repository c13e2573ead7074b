package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-case-portal/cases"
	"github.com/jrsteele09/go-case-portal/complaints"
	"github.com/jrsteele09/go-case-portal/evidence"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/internal/utils"
	"github.com/jrsteele09/go-case-portal/suspects"
)

func usageErr(format string, args ...any) error {
	return errors.Wrapf(errors.ErrInvalidRequest, "usage: "+format, args...)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Wrapf(errors.ErrInvalidRequest, "bad complaint id %q", s)
	}
	return id, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

// runComplaints dispatches list, cadet-inbox, officer-inbox, show, create,
// edit, delete, review, officer-review and resubmit.
func runComplaints(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list", "cadet-inbox", "officer-inbox":
		var (
			list []complaints.Complaint
			err  error
		)
		switch sub {
		case "list":
			list, err = a.complaints.List(ctx)
		case "cadet-inbox":
			list, err = a.complaints.CadetInbox(ctx)
		default:
			list, err = a.complaints.OfficerInbox(ctx)
		}
		if err != nil {
			return err
		}
		return a.printComplaints(list)

	case "show", "delete":
		if len(rest) != 1 {
			return usageErr("pcs complaints %s <id>", sub)
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		if sub == "delete" {
			if err := a.complaints.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted complaint %d\n", id)
			return nil
		}
		c, err := a.complaints.Get(ctx, id)
		if err != nil {
			return err
		}
		return a.printComplaint(c)

	case "create", "edit", "resubmit":
		fs := flagSet("complaints " + sub)
		title := fs.String("title", "", "short title")
		description := fs.String("description", "", "what happened")
		fields := fs.StringToString("field", nil, "extra payload field, key=value (repeatable)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		body := map[string]any{}
		for k, v := range *fields {
			body[k] = v
		}
		if *title != "" {
			body["title"] = *title
		}
		if *description != "" {
			body["description"] = *description
		}

		var (
			c   *complaints.Complaint
			err error
		)
		switch sub {
		case "create":
			c, err = a.complaints.Create(ctx, body)
		default:
			if fs.NArg() != 1 {
				return usageErr("pcs complaints %s <id> [--title ...] [--description ...]", sub)
			}
			id, perr := parseID(fs.Arg(0))
			if perr != nil {
				return perr
			}
			if sub == "edit" {
				c, err = a.complaints.Patch(ctx, id, body)
			} else {
				c, err = a.complaints.Resubmit(ctx, id, body)
			}
		}
		if err != nil {
			return err
		}
		return a.printComplaint(c)

	case "review", "officer-review":
		fs := flagSet("complaints " + sub)
		action := fs.String("action", "approve", "approve, reject (cadet) or defect (officer)")
		message := fs.String("message", "", "note sent back with a rejection")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return usageErr("pcs complaints %s <id> [--action ...] [--message ...]", sub)
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return err
		}
		body := map[string]any{"action": *action}
		if *message != "" {
			body["error_message"] = *message
		}
		var c *complaints.Complaint
		if sub == "review" {
			c, err = a.complaints.CadetReview(ctx, id, body)
		} else {
			c, err = a.complaints.OfficerReview(ctx, id, body)
		}
		if err != nil {
			return err
		}
		return a.printComplaint(c)
	}
	return usageErr("pcs complaints [list|cadet-inbox|officer-inbox|show|create|edit|delete|review|officer-review|resubmit]")
}

func (a *app) printComplaints(list []complaints.Complaint) error {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No complaints")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCREATED")
	for _, c := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Title, c.Status, formatTime(c.CreatedAt))
	}
	return w.Flush()
}

func (a *app) printComplaint(c *complaints.Complaint) error {
	w := a.table()
	fmt.Fprintf(w, "Complaint\t#%d\n", c.ID)
	fmt.Fprintf(w, "Title\t%s\n", c.Title)
	fmt.Fprintf(w, "Status\t%s\n", c.Status)
	if c.Description != "" {
		fmt.Fprintf(w, "Description\t%s\n", c.Description)
	}
	for _, k := range []string{"cadet_error_message", "officer_error_message"} {
		if v, ok := c.Raw[k].(string); ok && v != "" {
			fmt.Fprintf(w, "%s\t%s\n", strings.ReplaceAll(k, "_", " "), v)
		}
	}
	fmt.Fprintf(w, "Created\t%s\n", formatTime(c.CreatedAt))
	fmt.Fprintf(w, "Updated\t%s\n", formatTime(utils.Value(c.UpdatedAt)))
	return w.Flush()
}

// runCases dispatches list, show, track and stats.
func runCases(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		fs := flagSet("cases list")
		query := fs.StringP("query", "q", "", "search id, title or type")
		status := fs.String("status", string(cases.StatusAll), "status filter")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		list, err := a.cases.List(ctx, cases.ListParams{Query: *query, Status: cases.Status(strings.ToUpper(*status))})
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(a.out, "No cases")
			return nil
		}
		w := a.table()
		fmt.Fprintln(w, "ID\tTITLE\tTYPE\tSTATUS\tCREATED")
		for _, c := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Title,
				cases.FormatComplaintType(c.ComplaintType), cases.FormatStatus(c.Status), formatTime(c.CreatedAt))
		}
		return w.Flush()

	case "show":
		if len(rest) != 1 {
			return usageErr("pcs cases show <id>")
		}
		c, err := a.cases.Get(ctx, rest[0])
		if err != nil {
			return err
		}
		w := a.table()
		fmt.Fprintf(w, "Case\t%s\n", c.ID)
		fmt.Fprintf(w, "Title\t%s\n", c.Title)
		fmt.Fprintf(w, "Type\t%s\n", cases.FormatComplaintType(c.ComplaintType))
		fmt.Fprintf(w, "Status\t%s\n", cases.FormatStatus(c.Status))
		if c.CrimeLevel != "" {
			fmt.Fprintf(w, "Crime level\t%s\n", c.CrimeLevel)
		}
		if c.Description != "" {
			fmt.Fprintf(w, "Description\t%s\n", c.Description)
		}
		if len(c.EvidenceIDs) > 0 {
			fmt.Fprintf(w, "Evidence\t%s\n", strings.Join(c.EvidenceIDs, ", "))
		}
		fmt.Fprintf(w, "Created\t%s\n", formatTime(c.CreatedAt))
		return w.Flush()

	case "track":
		if len(rest) != 1 {
			return usageErr("pcs cases track <case id or tracking code>")
		}
		t, err := a.cases.Track(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s  %s\nCurrent status: %s\n\n", t.CaseID, t.Title, cases.FormatStatus(t.CurrentStatus))
		w := a.table()
		for _, item := range t.Timeline {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", formatTime(item.At), cases.FormatStatus(item.Status), item.Title, item.Description)
		}
		return w.Flush()

	case "stats":
		st, err := a.cases.Stats(ctx)
		if err != nil {
			return err
		}
		w := a.table()
		fmt.Fprintf(w, "Solved cases\t%d\n", st.SolvedCases)
		fmt.Fprintf(w, "Active cases\t%d\n", st.ActiveCases)
		fmt.Fprintf(w, "Staff\t%d\n", st.TotalStaff)
		return w.Flush()
	}
	return usageErr("pcs cases [list|show|track|stats]")
}

// runEvidence dispatches list, add and status.
func runEvidence(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		fs := flagSet("evidence list")
		caseID := fs.String("case", "", "only evidence of this case")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		list, err := a.evidence.List(ctx, *caseID)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(a.out, "No evidence")
			return nil
		}
		w := a.table()
		fmt.Fprintln(w, "ID\tCASE\tKIND\tTITLE\tSTATUS")
		for _, e := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.CaseID, evidence.FormatKind(e.Kind), e.Title, evidence.FormatStatus(e.Status))
		}
		return w.Flush()

	case "add":
		fs := flagSet("evidence add")
		var e evidence.Evidence
		var kind, media string
		fs.StringVar(&e.CaseID, "case", "", "case id")
		fs.StringVar(&kind, "kind", string(evidence.KindIdentity), "IDENTITY, VEHICLE, MEDICAL or MEDIA")
		fs.StringVar(&e.Title, "title", "", "title")
		fs.StringVar(&e.Description, "description", "", "description")
		fs.StringToStringVar(&e.Fields, "field", nil, "identity detail, key=value (repeatable)")
		fs.StringVar(&e.PlateNumber, "plate", "", "vehicle plate number")
		fs.StringVar(&e.VIN, "vin", "", "vehicle identification number")
		fs.StringVar(&e.Model, "model", "", "vehicle model")
		fs.StringVar(&e.Color, "color", "", "vehicle color")
		fs.StringVar(&e.SampleType, "sample", "", "medical sample type")
		fs.StringVar(&e.LabNotes, "lab-notes", "", "medical lab notes")
		fs.StringVar(&media, "media-type", "", "IMAGE, VIDEO or AUDIO")
		fs.StringVar(&e.URL, "url", "", "media location")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		e.Kind = evidence.Kind(strings.ToUpper(kind))
		e.MediaType = evidence.MediaType(strings.ToUpper(media))

		created, err := a.evidence.Create(ctx, e)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Registered %s for case %s (%s)\n", created.ID, created.CaseID, evidence.FormatStatus(created.Status))
		return nil

	case "status":
		if len(rest) != 2 {
			return usageErr("pcs evidence status <id> PENDING|VERIFIED|REJECTED")
		}
		e, err := a.evidence.SetStatus(ctx, rest[0], evidence.Status(strings.ToUpper(rest[1])))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s is now %s\n", e.ID, evidence.FormatStatus(e.Status))
		return nil
	}
	return usageErr("pcs evidence [list|add|status]")
}

func runMostWanted(ctx context.Context, a *app, args []string) error {
	fs := flagSet("most-wanted")
	asJSON := fs.Bool("json", false, "print raw JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := a.suspects.MostWanted(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	w := a.table()
	fmt.Fprintln(w, "NAME\tLEVEL\tREWARD\tLAST SEEN\tREASON")
	for _, m := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", m.FullName, suspects.FormatLevel(m.Level), m.RewardAmount, m.LastSeenLocation, m.Reason)
	}
	return w.Flush()
}
