package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"
)

const defaultPassword = "testpassword123"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "lifecycle":
		lifecycleCmd(apiURL, args)
	case "populate":
		populateCmd(apiURL, args)
	case "watch":
		watchCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Notes Simulator - Development tool for exercising the notes API

USAGE:
  simulator <command> [options]

COMMANDS:
  lifecycle  Register, log in, write notes, log out and verify the token is rejected
  populate   Create several users, each with a few notes
  watch      Log in and print note events from the websocket until interrupted
  help       Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Walk one user through the whole session lifecycle
  simulator lifecycle

  # Create 5 users with 3 notes each
  simulator populate --users=5 --notes=3

  # Stream events for an existing account
  simulator watch --username=alice --password=secret`)
}

func fail(step string, err error) {
	fmt.Printf("FAILED\n  %s: %v\n", step, err)
	os.Exit(1)
}

func lifecycleCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("lifecycle", flag.ExitOnError)
	notes := fs.Int("notes", 2, "Number of notes to create")
	fs.Parse(args)

	client := NewAPIClient(apiURL)

	fmt.Println("=== Notes Simulator: Session Lifecycle ===")
	fmt.Println()

	fmt.Print("Registering user... ")
	reg, err := client.RegisterUser("SimUser", defaultPassword)
	if err != nil {
		fail("register", err)
	}
	fmt.Printf("OK (user: %s)\n", reg.Username)

	fmt.Print("Logging in... ")
	login, err := client.Login(reg.Username, defaultPassword)
	if err != nil {
		fail("login", err)
	}
	fmt.Println("OK")

	fmt.Printf("Creating %d notes... ", *notes)
	var last *Note
	for i := 1; i <= *notes; i++ {
		last, err = client.CreateNote(login.AccessToken, fmt.Sprintf("Note %d", i), "written by simulator")
		if err != nil {
			fail("create note", err)
		}
	}
	fmt.Println("OK")

	if last != nil {
		fmt.Print("Updating last note... ")
		if _, err := client.UpdateNote(login.AccessToken, last.ID, "edited"); err != nil {
			fail("update note", err)
		}
		fmt.Println("OK")
	}

	list, err := client.ListNotes(login.AccessToken)
	if err != nil {
		fail("list notes", err)
	}
	fmt.Printf("Listed %d notes\n", len(list))

	if last != nil {
		fmt.Print("Checking another user cannot read the note... ")
		other, err := client.RegisterUser("SimOther", defaultPassword)
		if err != nil {
			fail("register second user", err)
		}
		_, err = client.GetNote(other.AccessToken, last.ID)
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.Status != 404 {
			fail("ownership check", fmt.Errorf("expected 404, got %v", err))
		}
		fmt.Println("OK")
	}

	fmt.Print("Logging out... ")
	if err := client.Logout(login.AccessToken); err != nil {
		fail("logout", err)
	}
	fmt.Println("OK")

	fmt.Print("Verifying revoked token is rejected... ")
	_, err = client.ListNotes(login.AccessToken)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != 401 {
		fail("revocation check", fmt.Errorf("expected 401, got %v", err))
	}
	fmt.Printf("OK (%s)\n", statusErr.Body.Code)

	fmt.Println()
	fmt.Println("Lifecycle complete.")
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	users := fs.Int("users", 3, "Number of users to create")
	notes := fs.Int("notes", 3, "Notes per user")
	fs.Parse(args)

	if *users < 1 || *notes < 0 {
		fmt.Println("Error: --users must be at least 1 and --notes non-negative")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Printf("Creating %d users with %d notes each:\n", *users, *notes)
	for i := 1; i <= *users; i++ {
		reg, err := client.RegisterUser(fmt.Sprintf("Player%d", i), defaultPassword)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create user: %v\n", i, *users, err)
			os.Exit(1)
		}

		for n := 1; n <= *notes; n++ {
			if _, err := client.CreateNote(reg.AccessToken, fmt.Sprintf("%s note %d", reg.Username, n), "populated"); err != nil {
				fmt.Printf("  [%d/%d] FAILED to create note: %v\n", i, *users, err)
				os.Exit(1)
			}
		}

		fmt.Printf("  [%d/%d] %s (password: %s)\n", i, *users, reg.Username, defaultPassword)
	}
}

func watchCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	username := fs.String("username", "", "Account to watch")
	password := fs.String("password", defaultPassword, "Account password")
	fs.Parse(args)

	if *username == "" {
		fmt.Println("Error: --username is required")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	login, err := client.Login(*username, *password)
	if err != nil {
		fail("login", err)
	}

	conn, err := client.DialEvents(login.AccessToken)
	if err != nil {
		fail("connect", err)
	}
	defer conn.Close()

	fmt.Printf("Watching note events for %s (Ctrl+C to stop)\n", *username)
	for {
		var msg struct {
			Type      string          `json:"type"`
			Payload   json.RawMessage `json:"payload"`
			Timestamp int64           `json:"timestamp"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			fmt.Printf("Connection closed: %v\n", err)
			return
		}
		fmt.Printf("%s  %-14s %s\n", time.UnixMilli(msg.Timestamp).Format(time.TimeOnly), msg.Type, string(msg.Payload))
	}
}
