package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/absence"
	"github.com/trezcool/releve/core/grade"
	"github.com/trezcool/releve/core/syllabus"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	isTerminalFunc   = term.IsTerminal   // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf *core.Config
	db   *sql.DB
	out  io.Writer
	in   io.Reader

	gradeSvc    *grade.Service
	absenceSvc  *absence.Service
	syllabusSvc *syllabus.Service
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  createdb - create the app database role and database (prompts for the admin password)")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status...)")
	_, _ = fmt.Fprintln(cli.out, "  import -kind grades|syllabi|absences [-student ID] -file FILE - import a JSON payload")
	_, _ = fmt.Fprintln(cli.out, "  report -student ID [-semester N] - print a student's grades and absences")
	_, _ = fmt.Fprintln(cli.out, "  unmatched -student ID - list grades matching no syllabus")
	_, _ = fmt.Fprintln(cli.out, "  export -student ID [-semester N] -out FILE.xlsx - export a transcript spreadsheet")
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	color.NoColor = !cli.isTerminal()

	switch args[1] {
	case "createdb":
		return cli.createDB()

	case "migrate":
		if len(args) < 3 {
			_, _ = fmt.Fprintln(cli.out, "Usage: migrate COMMAND [ARGS]")
			return errHelp
		}
		return cli.migrate(args[2:])

	case "import":
		cmd := cli.newFlagSet("import")
		kind := cmd.String("kind", "", "What to import: grades, syllabi or absences.")
		student := cmd.String("student", "", "The student ID (grades & absences).")
		name := cmd.String("name", "", "The student's name, used in notifications (grades).")
		email := cmd.String("email", "", "The student's email; new grades are notified to it (grades).")
		file := cmd.String("file", "", "The JSON payload; - reads stdin.")
		if err := cli.parse(cmd, args[2:]); err != nil {
			return err
		}
		if *kind == "" || *file == "" {
			cmd.Usage()
			return errHelp
		}
		ref := core.StudentRef{ID: *student, Name: *name, Email: *email}
		return cli.importData(*kind, ref, *file)

	case "report":
		cmd := cli.newFlagSet("report")
		student := cmd.String("student", "", "The student ID.")
		semester := cmd.Int("semester", 0, "The semester; 0 reports all semesters.")
		if err := cli.parse(cmd, args[2:]); err != nil {
			return err
		}
		if *student == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.report(*student, *semester)

	case "unmatched":
		cmd := cli.newFlagSet("unmatched")
		student := cmd.String("student", "", "The student ID.")
		if err := cli.parse(cmd, args[2:]); err != nil {
			return err
		}
		if *student == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.unmatched(*student)

	case "export":
		cmd := cli.newFlagSet("export")
		student := cmd.String("student", "", "The student ID.")
		semester := cmd.Int("semester", 0, "The semester; 0 exports all semesters.")
		out := cmd.String("out", "", "The .xlsx file to write.")
		if err := cli.parse(cmd, args[2:]); err != nil {
			return err
		}
		if *student == "" || *out == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.export(*student, *semester, *out)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) isTerminal() bool {
	f, ok := cli.out.(*os.File)
	return ok && isTerminalFunc(int(f.Fd()))
}
