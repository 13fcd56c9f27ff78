package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/omarshaarawi/gmwiki/internal/view"
)

const (
	listLimit       = 20
	suggestionLimit = 3
)

type Handler struct {
	dir view.Directory
}

func NewHandler(dir view.Directory) *Handler {
	return &Handler{dir: dir}
}

// Reply answers command messages. Anything else gets no reply.
func (h *Handler) Reply(ctx context.Context, update tgbotapi.Update) (tgbotapi.MessageConfig, bool) {
	if update.Message == nil || !update.Message.IsCommand() {
		return tgbotapi.MessageConfig{}, false
	}
	slog.Info("Handling command",
		"command", update.Message.Command(),
		"args", update.Message.CommandArguments(),
		"chat_id", update.Message.Chat.ID,
	)
	return h.HandleCommand(ctx, update), true
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())

	switch command {
	case "start":
		msg.Text = "Welcome to the Chess Grandmasters Wiki! Use /help to see available commands."
	case "help":
		msg.Text = "Available commands:\n/list [search] - List grandmasters, optionally filtered\n/profile <username> - Show a grandmaster's profile"
	case "list":
		h.handleList(ctx, &msg, args)
	case "profile":
		h.handleProfile(ctx, &msg, args)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleList(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	lv := view.NewListView(h.dir)
	lv.SearchTerm = args
	lv.Load(ctx)

	cards := lv.Cards()
	summary := lv.Summary()
	if len(cards) == 0 {
		msg.Text = "No Grandmasters found"
		if suggestions := lv.Suggestions(suggestionLimit); len(suggestions) > 0 {
			msg.Text += "\nDid you mean: " + strings.Join(suggestions, ", ") + "?"
		}
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Grandmasters (showing %d of %d, %d verified)\n\n", summary.Showing, summary.Total, summary.Verified)
	for i, c := range cards {
		if i == listLimit {
			fmt.Fprintf(&sb, "...and %d more. Narrow it down with /list <search>\n", len(cards)-listLimit)
			break
		}
		sb.WriteString(c.Name)
		if c.Name != c.Username {
			fmt.Fprintf(&sb, " (%s)", c.Username)
		}
		if c.Place != "" {
			fmt.Fprintf(&sb, " - %s", c.Place)
		}
		if c.Verified {
			sb.WriteString(" ✓")
		}
		sb.WriteString("\n")
	}
	msg.Text = sb.String()
}

func (h *Handler) handleProfile(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	if args == "" {
		msg.Text = "Please provide a username. Usage: /profile <username>"
		return
	}
	username := strings.Fields(args)[0]

	pv := view.NewProfileView(h.dir)
	defer pv.Close()

	if err := pv.Load(ctx, username); err != nil {
		msg.Text = fmt.Sprintf("Error fetching profile: %v", err)
		return
	}
	page := pv.Page()
	if !page.Found {
		msg.Text = fmt.Sprintf("Player %s not found", username)
		return
	}

	var sb strings.Builder
	if page.Title != "" {
		fmt.Fprintf(&sb, "%s ", page.Title)
	}
	fmt.Fprintf(&sb, "%s (@%s)\n", page.Name, page.Username)
	if page.Location != "" {
		fmt.Fprintf(&sb, "%s\n", page.Location)
	}
	if page.League != nil {
		fmt.Fprintf(&sb, "League: %s\n", page.League.Label)
	}
	fmt.Fprintf(&sb, "Followers: %s\n", page.Followers)
	fmt.Fprintf(&sb, "Status: %s\n", page.Status)
	fmt.Fprintf(&sb, "Joined: %s\n", page.Joined)
	if page.HasLastOnline {
		fmt.Fprintf(&sb, "Last online: %s ago\n", page.Elapsed)
	} else {
		fmt.Fprintf(&sb, "Last online: %s\n", page.Elapsed)
	}
	if page.FIDE != "" {
		fmt.Fprintf(&sb, "FIDE: %s\n", page.FIDE)
	}
	for _, s := range page.Stats {
		fmt.Fprintf(&sb, "%s: %s (last %s)\n", s.Label, s.Rating, s.LastDate)
	}
	if page.ProfileURL != "" {
		sb.WriteString(page.ProfileURL)
	}
	msg.Text = strings.TrimRight(sb.String(), "\n")
}
