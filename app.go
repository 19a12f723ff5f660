package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"taskdeck/auth"
	"taskdeck/domain"
	"taskdeck/storage"
)

// authPause is a simulated network delay around login and registration,
// kept purely for pacing.
const authPause = 500 * time.Millisecond

const themeKey = "theme"

// app is the interactive front end. It owns all mutable state explicitly:
// the active session, the authoritative task collection and the current view
// settings. The core packages stay pure or constructor-scoped; nothing here
// is ambient.
type app struct {
	sessions *auth.Store
	tasks    storage.TaskSource
	kv       storage.KV
	log      *log.Logger

	session  domain.Session
	loggedIn bool

	list    []domain.Task
	visible []domain.Task
	filter  string
	search  string
	sortBy  string
	order   string

	in  *bufio.Scanner
	out io.Writer
}

func newApp(sessions *auth.Store, tasks storage.TaskSource, kv storage.KV, logger *log.Logger, in io.Reader, out io.Writer) *app {
	return &app{
		sessions: sessions,
		tasks:    tasks,
		kv:       kv,
		log:      logger,
		filter:   domain.StatusAll,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

func (a *app) run(ctx context.Context) error {
	if sess, ok := a.sessions.CurrentSession(ctx); ok {
		a.enterSession(ctx, sess)
		fmt.Fprintf(a.out, "welcome back, %s\n", sess.Email)
	} else {
		fmt.Fprintln(a.out, "taskdeck — register <email> <password> <confirm> or login <email> <password>")
	}

	for {
		fmt.Fprint(a.out, "> ")
		if !a.in.Scan() {
			return a.in.Err()
		}
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		a.dispatch(ctx, cmd, args, line)
	}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string, line string) {
	switch cmd {
	case "register":
		a.cmdRegister(ctx, args)
	case "login":
		a.cmdLogin(ctx, args)
	case "logout":
		a.cmdLogout(ctx)
	case "theme":
		a.cmdTheme(ctx, args)
	case "help":
		a.printHelp()
	case "list", "add", "toggle", "edit", "delete", "filter", "search", "sort", "stats":
		if !a.loggedIn {
			fmt.Fprintln(a.out, "log in first")
			return
		}
		a.dispatchTasks(ctx, cmd, args, line)
	default:
		fmt.Fprintf(a.out, "unknown command %q (try help)\n", cmd)
	}
}

func (a *app) dispatchTasks(ctx context.Context, cmd string, args []string, line string) {
	switch cmd {
	case "list":
		a.render()
	case "add":
		a.cmdAdd(ctx, line)
	case "toggle":
		a.cmdToggle(ctx, args)
	case "edit":
		a.cmdEdit(ctx, args, line)
	case "delete":
		a.cmdDelete(ctx, args)
	case "filter":
		a.cmdFilter(args)
	case "search":
		a.search = strings.TrimSpace(strings.TrimPrefix(line, "search"))
		a.render()
	case "sort":
		a.cmdSort(args)
	case "stats":
		a.printStats()
	}
}

func (a *app) cmdRegister(ctx context.Context, args []string) {
	if len(args) != 3 {
		fmt.Fprintln(a.out, "usage: register <email> <password> <confirm>")
		return
	}
	time.Sleep(authPause)
	sess, err := a.sessions.Register(ctx, args[0], args[1], args[2])
	if err != nil {
		fmt.Fprintln(a.out, err)
		return
	}
	a.enterSession(ctx, sess)
	fmt.Fprintf(a.out, "registered and logged in as %s\n", sess.Email)
}

func (a *app) cmdLogin(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "usage: login <email> <password>")
		return
	}
	time.Sleep(authPause)
	sess, err := a.sessions.Login(ctx, args[0], args[1])
	if err != nil {
		fmt.Fprintln(a.out, err)
		return
	}
	a.enterSession(ctx, sess)
	fmt.Fprintf(a.out, "logged in as %s\n", sess.Email)
}

func (a *app) cmdLogout(ctx context.Context) {
	if err := a.sessions.Logout(ctx); err != nil {
		a.log.Warnf("logout: %v", err)
	}
	a.session = domain.Session{}
	a.loggedIn = false
	a.list = nil
	a.visible = nil
	fmt.Fprintln(a.out, "logged out")
}

func (a *app) enterSession(ctx context.Context, sess domain.Session) {
	a.session = sess
	a.loggedIn = true
	a.list = a.tasks.Load(ctx, sess.ID)
	a.filter = domain.StatusAll
	a.search = ""
	a.sortBy = ""
	a.order = ""
}

// cmdAdd parses `add title | description`, validates and appends.
func (a *app) cmdAdd(ctx context.Context, line string) {
	title, desc := splitTitleDesc(strings.TrimPrefix(line, "add"))
	v := domain.ValidateTask(domain.TaskInput{Title: title, Description: desc})
	if !v.Valid {
		a.printFieldErrors(v.Errors)
		return
	}
	a.list = append(a.list, domain.NewTask(title, desc))
	a.persist(ctx)
	a.render()
}

func (a *app) cmdToggle(ctx context.Context, args []string) {
	task, ok := a.pick(args)
	if !ok {
		return
	}
	completed := !task.Completed
	a.replace(domain.UpdateTask(task, domain.TaskUpdate{Completed: &completed}))
	a.persist(ctx)
	a.render()
}

func (a *app) cmdEdit(ctx context.Context, args []string, line string) {
	task, ok := a.pick(args)
	if !ok {
		return
	}
	rest := strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(line, "edit")), args[0])
	title, desc := splitTitleDesc(rest)
	v := domain.ValidateTask(domain.TaskInput{Title: title, Description: desc})
	if !v.Valid {
		a.printFieldErrors(v.Errors)
		return
	}
	title = strings.TrimSpace(title)
	desc = strings.TrimSpace(desc)
	a.replace(domain.UpdateTask(task, domain.TaskUpdate{Title: &title, Description: &desc}))
	a.persist(ctx)
	a.render()
}

func (a *app) cmdDelete(ctx context.Context, args []string) {
	task, ok := a.pick(args)
	if !ok {
		return
	}
	a.list = storage.RemoveTask(a.list, task.ID)
	a.persist(ctx)
	a.render()
}

func (a *app) cmdFilter(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "usage: filter all|pending|completed")
		return
	}
	a.filter = args[0]
	a.render()
}

func (a *app) cmdSort(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "usage: sort createdAt|title|status [asc|desc]")
		return
	}
	a.sortBy = args[0]
	a.order = domain.OrderAsc
	if len(args) > 1 {
		a.order = args[1]
	}
	a.render()
}

func (a *app) cmdTheme(ctx context.Context, args []string) {
	if len(args) == 0 {
		theme, ok, err := a.kv.Get(ctx, themeKey)
		if err != nil || !ok {
			theme = "light"
		}
		fmt.Fprintf(a.out, "theme: %s\n", theme)
		return
	}
	if args[0] != "dark" && args[0] != "light" {
		fmt.Fprintln(a.out, "usage: theme [dark|light]")
		return
	}
	if err := a.kv.Set(ctx, themeKey, args[0]); err != nil {
		a.log.Warnf("save theme: %v", err)
	}
}

// persist writes the authoritative collection after every mutation, empty or
// not.
func (a *app) persist(ctx context.Context) {
	if err := a.tasks.Save(ctx, a.session.ID, a.list); err != nil {
		fmt.Fprintf(a.out, "save failed: %v\n", err)
	}
}

// render recomputes the visible subset from the authoritative collection and
// the current view settings, then prints it with stats.
func (a *app) render() {
	a.visible = domain.FilterTasks(a.list, a.filter, a.search)
	if a.sortBy != "" {
		a.visible = domain.SortTasks(a.visible, a.sortBy, a.order)
	}
	if len(a.visible) == 0 {
		fmt.Fprintln(a.out, "no tasks")
	}
	for i, t := range a.visible {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		if t.Description != "" {
			fmt.Fprintf(a.out, "%3d [%s] %s — %s\n", i+1, mark, t.Title, t.Description)
		} else {
			fmt.Fprintf(a.out, "%3d [%s] %s\n", i+1, mark, t.Title)
		}
	}
	a.printStats()
}

func (a *app) printStats() {
	s := domain.TaskStats(a.list)
	fmt.Fprintf(a.out, "%d total, %d pending, %d completed\n", s.Total, s.Pending, s.Completed)
}

func (a *app) printFieldErrors(errs domain.TaskErrors) {
	if errs.Title != "" {
		fmt.Fprintln(a.out, errs.Title)
	}
	if errs.Description != "" {
		fmt.Fprintln(a.out, errs.Description)
	}
}

// pick resolves a 1-based index from the last rendered view into a task.
func (a *app) pick(args []string) (domain.Task, bool) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "which task? (use the number from list)")
		return domain.Task{}, false
	}
	if a.visible == nil {
		a.visible = domain.FilterTasks(a.list, a.filter, a.search)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.visible) {
		fmt.Fprintf(a.out, "no task %q\n", args[0])
		return domain.Task{}, false
	}
	return a.visible[n-1], true
}

// replace swaps the task with a matching id in the authoritative collection,
// keeping insertion order.
func (a *app) replace(task domain.Task) {
	for i := range a.list {
		if a.list[i].ID == task.ID {
			a.list[i] = task
			return
		}
	}
}

// splitTitleDesc splits `title | description` input; the description part is
// optional.
func splitTitleDesc(s string) (string, string) {
	parts := strings.SplitN(s, "|", 2)
	title := strings.TrimSpace(parts[0])
	desc := ""
	if len(parts) == 2 {
		desc = strings.TrimSpace(parts[1])
	}
	return title, desc
}

func (a *app) printHelp() {
	fmt.Fprint(a.out, `commands:
  register <email> <password> <confirm>
  login <email> <password>
  logout
  list
  add <title> [| description]
  toggle <n> | edit <n> <title> [| description] | delete <n>
  filter all|pending|completed
  search [term]
  sort createdAt|title|status [asc|desc]
  stats
  theme [dark|light]
  quit
`)
}
