package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
)

const usage = `Usage: admin <command> [args]

Commands:
  list [status] [search]   list complaints (status: pending|done)
  show <id>                print one complaint
  delete <id>              soft-delete a complaint
  backlog [age]            count pending complaints older than age (default BACKLOG_AGE)`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("failed to load configuration: %v", err)
	}
	logger.Init(cfg)

	db, err := storage.Open(cfg)
	if err != nil {
		logger.Log.Fatalf("failed to connect database: %v", err)
	}

	// Dashboards are not notified from the CLI; they pick changes up on reconnect.
	svc := complaint.NewService(storage.NewStorageService(db), nil)
	ctx := context.Background()

	switch os.Args[1] {
	case "list":
		var status, search string
		if len(os.Args) > 2 {
			status = os.Args[2]
		}
		if len(os.Args) > 3 {
			search = strings.Join(os.Args[3:], " ")
		}
		if err := listComplaints(ctx, svc, status, search); err != nil {
			logger.Log.Fatalf("Error listing complaints: %v", err)
		}
	case "show":
		id := requireID("show")
		c, err := svc.Get(ctx, id)
		if err != nil {
			logger.Log.Fatalf("Error loading complaint: %v", err)
		}
		printComplaint(c)
	case "delete":
		id := requireID("delete")
		if _, err := svc.Delete(ctx, id); err != nil {
			logger.Log.Fatalf("Error deleting complaint: %v", err)
		}
		fmt.Printf("Complaint %d has been deleted.\n", id)
	case "backlog":
		age := cfg.BacklogAge
		if len(os.Args) > 2 {
			if age, err = time.ParseDuration(os.Args[2]); err != nil {
				fmt.Println("Invalid age. Use a duration such as 30m or 2h.")
				os.Exit(1)
			}
		}
		stats, err := svc.Backlog(ctx, age)
		if err != nil {
			logger.Log.Fatalf("Error counting backlog: %v", err)
		}
		fmt.Printf("%d pending complaint(s) older than %s\n", stats.Count, stats.OlderThan)
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func requireID(command string) uint {
	if len(os.Args) != 3 {
		fmt.Printf("Usage: admin %s <complaint_id>\n", command)
		os.Exit(1)
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil || id == 0 {
		fmt.Println("Invalid complaint ID. Please provide a positive integer.")
		os.Exit(1)
	}
	return uint(id)
}

func listComplaints(ctx context.Context, svc *complaint.Service, status, search string) error {
	f, err := complaint.ParseFilter(status, "", "", search)
	if err != nil {
		return err
	}
	rows, err := svc.List(ctx, f)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tSENDER\tMESSAGE")
	for _, c := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Status, c.CreatedAt.Local().Format("2006-01-02 15:04"), deref(c.SenderUsername), truncate(c.Message, 60))
	}
	return w.Flush()
}

func printComplaint(c *models.Complaint) {
	fmt.Printf("ID:        %d\n", c.ID)
	fmt.Printf("Status:    %s\n", c.Status)
	fmt.Printf("Chat:      %s\n", c.ChatID)
	fmt.Printf("Sender:    %s\n", deref(c.SenderUsername))
	fmt.Printf("Created:   %s\n", c.CreatedAt.Local().Format(time.RFC3339))
	fmt.Printf("Keywords:  %s\n", strings.Join(c.MatchedKeywords, ", "))
	fmt.Printf("Message:   %s\n", c.Message)
	fmt.Printf("Draft:     %s\n", deref(c.ModelReply))
	if c.RepliedAt != nil {
		fmt.Printf("Replied:   %s\n", c.RepliedAt.Local().Format(time.RFC3339))
		fmt.Printf("Reply:     %s\n", deref(c.ReplyText))
		fmt.Printf("Media:     %s\n", deref(c.ReplyMedia))
	}
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
