package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"caravan-bot/internal/bootstrap"
	"caravan-bot/internal/caravan"
	"caravan-bot/internal/config"
	"caravan-bot/internal/entity"
	"caravan-bot/internal/service"
	"caravan-bot/pkg/routetext"
)

const (
	demoChannelID   = "demo"
	demoChannelName = "caravan-demo"
)

var demoUser = entity.User{ID: 1, DisplayName: "Scout"}

// Interactive driver for exercising the caravan pipeline without a chat
// gateway attached. Place names are comma-separated on route commands.
func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Logger.Sync()

	ctx := context.Background()

	// 3. Start Background Services
	if err := container.NotifierService.Consume(ctx); err != nil {
		log.Fatalf("Unable to start notifier: %v", err)
	}

	fmt.Println("caravan demo. commands: route, add, remove, start, next, skip, stop, reset, join, leave, status, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest := splitCommand(line)
		if cmd == "quit" || cmd == "exit" {
			break
		}
		runCommand(ctx, container.CaravanService, cmd, rest)
	}
}

func runCommand(ctx context.Context, caravans service.ICaravanService, cmd, rest string) {
	switch cmd {
	case "route":
		report(caravans.SetRoute(ctx, demoChannelID, demoChannelName, asRouteText(rest), true))
	case "add":
		report(caravans.AddStops(ctx, demoChannelID, demoChannelName, asRouteText(rest), true, true))
	case "remove":
		report(caravans.RemoveStops(ctx, demoChannelID, demoChannelName, asRouteText(rest), true))
	case "start":
		report(caravans.Start(ctx, demoChannelID, demoChannelName))
	case "stop":
		report(caravans.Stop(ctx, demoChannelID, demoChannelName))
	case "reset":
		report(caravans.Reset(ctx, demoChannelID, demoChannelName))
	case "next":
		report(caravans.Advance(ctx, demoChannelID, demoChannelName, nil))
	case "skip":
		reason := rest
		report(caravans.Advance(ctx, demoChannelID, demoChannelName, &reason))
	case "join":
		report(caravans.Join(ctx, demoChannelID, demoChannelName, demoUser, rest))
	case "leave":
		report(caravans.Leave(ctx, demoChannelID, demoChannelName, demoUser))
	case "status":
		model := caravans.Status(demoChannelID, demoChannelName)
		fmt.Printf("mode: %s, members: %d\n", model.Mode(), model.TotalMembers())
		if route := model.Route(); len(route) > 0 {
			fmt.Println(routetext.FormatRoute(route))
		}
	default:
		fmt.Printf("unknown command: %s\n", cmd)
	}
}

func report(receipt caravan.Receipt, err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println(service.DescribeReceipt(receipt))
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	cmd := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return cmd, ""
	}
	return cmd, strings.TrimSpace(parts[1])
}

// asRouteText turns "clock, tower" into the markdown list the parser expects.
func asRouteText(names string) string {
	var lines []string
	for _, name := range strings.Split(names, ",") {
		if name = strings.TrimSpace(name); name != "" {
			lines = append(lines, "- "+name)
		}
	}
	return strings.Join(lines, "\n")
}
