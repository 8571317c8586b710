/*
Copyright (C) 2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
/*
	almostlisp interactive term rewriter with a remote evaluation endpoint
*/
package main

import "os"
import "io"
import "fmt"
import "flag"
import "time"
import "bufio"
import "sync"
import "syscall"
import "os/signal"
import "crypto/rand"
import "path/filepath"
import "runtime/pprof"
import "github.com/google/uuid"
import "github.com/docker/go-units"
import "github.com/fsnotify/fsnotify"
import "github.com/launix-de/almostlisp/alm"

var IOEnv *alm.Env

// rebind copies a registered builtin and swaps its native function for
// a directory-bound closure, so imported files resolve paths relative
// to their own location.
func rebind(reg *alm.Registry, name string, fn func(*alm.Env, ...alm.Term) (alm.Term, error)) alm.Term {
	def := *reg.Lookup(name)
	def.Fn = fn
	return alm.NewBuiltin(&def)
}

func getImport(reg *alm.Registry, path string) func (*alm.Env, ...alm.Term) (alm.Term, error) {
	return func (en *alm.Env, a ...alm.Term) (alm.Term, error) {
			filename := path + "/" + a[0].Text()
			// TODO: filepath.Walk for wildcards
			wd := filepath.Dir(filename)
			otherPath := &alm.Env {
				Vars: alm.Vars {
					"__DIR__": alm.NewString(wd),
					"__FILE__": alm.NewString(filename),
					"import": rebind(reg, "import", getImport(reg, wd)),
					"load": rebind(reg, "load", getLoad(wd)),
					"watch": rebind(reg, "watch", getWatch(wd)),
				},
				Outer: IOEnv,
			}
			bytes, err := os.ReadFile(filename)
			if err != nil {
				return alm.Term{}, err
			}
			return alm.EvalAll(filename, string(bytes), otherPath)
		}
}

func getLoad(path string) func (*alm.Env, ...alm.Term) (alm.Term, error) {
	return func (en *alm.Env, a ...alm.Term) (alm.Term, error) {
			filename := path + "/" + a[0].Text()
			if len(a) > 2 {
				file, err := os.Open(filename)
				if err != nil {
					return alm.Term{}, err
				}
				defer file.Close()
				splitter := bufio.NewReader(file)
				delimiter := a[2].Text()
				if len(delimiter) != 1 {
					return alm.Term{}, fmt.Errorf("load delimiter must be 1 byte long")
				}
				for {
					str, err := splitter.ReadString(delimiter[0])
					if err == io.EOF {
						break // file is finished
					}
					if err != nil {
						return alm.Term{}, err
					}
					if _, err := alm.Invoke(a[1], []alm.Term{alm.NewString(str)}, en); err != nil {
						return alm.Term{}, err
					}
				}
			} else {
				// read in whole
				bytes, err := os.ReadFile(filename)
				if err != nil {
					return alm.Term{}, err
				}
				if len(a) > 1 {
					if _, err := alm.Invoke(a[1], []alm.Term{alm.NewString(string(bytes))}, en); err != nil {
						return alm.Term{}, err
					}
				} else {
					return alm.NewString(string(bytes)), nil
				}
			}
			return alm.NewInteger(1), nil
		}
}

func getWatch(path string) func (*alm.Env, ...alm.Term) (alm.Term, error) {
	return func (en *alm.Env, a ...alm.Term) (alm.Term, error) {
		filename := path + "/" + a[0].Text()
		reread := func () error {
			// read in whole
			bytes, err := os.ReadFile(filename)
			if err != nil {
				return err
			}
			_, err = alm.Invoke(a[1], []alm.Term{alm.NewString(string(bytes))}, en)
			return err
		}
		if err := reread(); err != nil { // read once at the beginning in sync
			return alm.Term{}, err
		}
		// watch for changes
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return alm.Term{}, err
		}
		go func() {
			for {
				select {
				case <- watcher.Events:
					// flush all other events
					for {
						time.Sleep(10 * time.Millisecond) // delay a bit, so we don't read empty files
						select {
						case <- watcher.Events:
							// ignore
						default:
							goto to_reread
						}
					}
					to_reread:
					// now reread the file
					if err := reread(); err != nil {
						// error happens during reload: log to console
						alm.PrintError("error reloading " + filename + ": " + err.Error())
					}
					watcher.Add(filename) // text editors rename, so we have to rewatch
				}
			}
		}()
		err = watcher.Add(filename)
		if err != nil {
			return alm.Term{}, err
		}
		return alm.NewInteger(1), nil
	}
}

// workaround for flags package to allow multiple values
type arrayFlags []string

func (i *arrayFlags) String() string {
    return "dummy"
}

func (i *arrayFlags) Set(value string) error {
    *i = append(*i, value)
    return nil
}

func setupIO(reg *alm.Registry, wd string) {
	// define some IO functions (alm will not provide them since it is sandboxable)
	IOEnv = &alm.Env {
		Vars: alm.Vars {},
		Outer: reg.Environment(),
	}
	reg.DeclareTitle("IO")
	reg.Declare(IOEnv, &alm.Declaration{
		Name: "print", Desc: "Prints values to stdout (only in IO environment)",
		MinParameter: 1, MaxParameter: 1000,
		Params: []alm.DeclarationParameter{
			alm.DeclarationParameter{Name: "value...", Type: "any", Desc: "values to print"},
		}, Returns: "int",
		Fn: func (en *alm.Env, a ...alm.Term) (alm.Term, error) {
			for _, s := range a {
				if s.IsString() {
					fmt.Print(s.Text())
				} else {
					fmt.Print(s.String())
				}
			}
			fmt.Println()
			return alm.NewInteger(1), nil
		},
	})
	reg.Declare(IOEnv, &alm.Declaration{
		Name: "env", Desc: "returns the content of a environment variable",
		MinParameter: 1, MaxParameter: 2,
		Params: []alm.DeclarationParameter{
			alm.DeclarationParameter{Name: "var", Type: "string", Desc: "envvar"},
			alm.DeclarationParameter{Name: "default", Type: "string", Desc: "default if the env is not found"},
		}, Returns: "string",
		Fn: func (en *alm.Env, a ...alm.Term) (alm.Term, error) {
			if len(a) > 1 {
				if val, ok := os.LookupEnv(a[0].Text()); ok {
					return alm.NewString(val), nil
				} else {
					return a[1], nil
				}
			} else {
				return alm.NewString(os.Getenv(a[0].Text())), nil
			}
		},
	})
	reg.Declare(IOEnv, &alm.Declaration{
		Name: "help", Desc: "Lists all functions or print help for a specific function",
		MinParameter: 0, MaxParameter: 1,
		Params: []alm.DeclarationParameter{
			alm.DeclarationParameter{Name: "topic", Type: "string", Desc: "function to print help about"},
		}, Returns: "int",
		Fn: func (en *alm.Env, a ...alm.Term) (alm.Term, error) {
			if len(a) == 0 {
				reg.Help("")
			} else {
				reg.Help(a[0].Text())
			}
			return alm.NewInteger(1), nil
		},
	})
	reg.Declare(IOEnv, &alm.Declaration{
		Name: "import", Desc: "Imports a .alm file into current namespace",
		MinParameter: 1, MaxParameter: 1,
		Params: []alm.DeclarationParameter{
			alm.DeclarationParameter{Name: "filename", Type: "string", Desc: "filename relative to folder of source file"},
		}, Returns: "any",
		Fn: getImport(reg, wd),
	})
	reg.Declare(IOEnv, &alm.Declaration{
		Name: "load", Desc: "Loads a file and returns the string",
		MinParameter: 1, MaxParameter: 3,
		Params: []alm.DeclarationParameter{
			alm.DeclarationParameter{Name: "filename", Type: "string", Desc: "filename relative to folder of source file"},
			alm.DeclarationParameter{Name: "linehandler", Type: "func", Desc: "handler that reads each line"},
			alm.DeclarationParameter{Name: "delimiter", Type: "string", Desc: "delimiter to extract"},
		}, Returns: "string|int",
		Fn: getLoad(wd),
	})
	reg.Declare(IOEnv, &alm.Declaration{
		"watch", "Loads a file and calls the callback. Whenever the file changes on disk, the file is load again.",
		2, 2,
		[]alm.DeclarationParameter{
			alm.DeclarationParameter{"filename", "string", "filename relative to folder of source file"},
			alm.DeclarationParameter{"updatehandler", "func", "handler that receives the file content func(content)"},
		}, "int",
		getWatch(wd),
	})
	reg.Declare(IOEnv, &alm.Declaration{
		"serve", "Opens the remote evaluation HTTP endpoint at a given port",
		1, 1,
		[]alm.DeclarationParameter{
			alm.DeclarationParameter{"port", "int", "port number for the HTTP server"},
		}, "int",
		func (en *alm.Env, a ...alm.Term) (alm.Term, error) {
			alm.Serve(int(a[0].Int()), reg)
			return alm.NewInteger(1), nil
		},
	})
	reg.Declare(IOEnv, &alm.Declaration{
		"settings", "Reads or changes engine settings; without arguments it lists all settings",
		0, 2,
		[]alm.DeclarationParameter{
			alm.DeclarationParameter{"name", "string", "name of the setting"},
			alm.DeclarationParameter{"value", "int", "new value; booleans are 0 or 1"},
		}, "string|int",
		ChangeSettings,
	})
	reg.Declare(IOEnv, &alm.Declaration{
		"stats", "Returns evaluation counters and memory usage of the engine",
		0, 0,
		[]alm.DeclarationParameter{}, "string",
		func (en *alm.Env, a ...alm.Term) (alm.Term, error) {
			return alm.NewString(statsLine() + " env=" + units.HumanSize(float64(en.ComputeSize()))), nil
		},
	})
}

func statsLine() string {
	st := alm.ReadStats()
	return fmt.Sprintf("steps=%d calls=%d expressions=%d sessions=%d rss=%s",
		st.Steps, st.Calls, st.Expressions, st.Sessions, units.HumanSize(float64(st.ProcessRSS)))
}

func main() {
	// init random generator for UUIDs
	uuid.SetRand(rand.Reader)

	// parse command line options
	var commands arrayFlags
	flag.Var(&commands, "c", "Execute command")

	port := 0
	flag.IntVar(&port, "port", 0, "Serve the remote evaluation endpoint on this port")

	docs := ""
	flag.StringVar(&docs, "docs", "", "Write function documentation to this folder and exit")

	profile := ""
	flag.StringVar(&profile, "profile", "", "Write a CPU profile to this file")

	repl := false
	flag.BoolVar(&repl, "repl", false, "Start the prompt even when files or commands are given")

	wd, _ := os.Getwd() // libraries are relative to working directory... or change with -wd PATH
	flag.StringVar(&wd, "wd", wd, "Working Directory for (import) and (load) (Default: .)")

	flag.BoolVar(&Settings.Trace, "trace", false, "Write a chrome trace file of the reduction steps")
	flag.BoolVar(&Settings.TracePrint, "traceprint", false, "Print every reduction step")
	flag.IntVar(&Settings.MaxReduceSteps, "steps", 0, "Abort reductions after this many steps (0 = unlimited)")

	flag.Parse()
	imports := flag.Args()

	InitSettings()

	// engine initialization
	reg := alm.NewBuiltinRegistry()
	setupIO(reg, wd)

	if docs != "" {
		if err := reg.WriteDocumentation(docs); err != nil {
			alm.PrintError(err.Error())
			os.Exit(1)
		}
		return
	}

	if port != 0 {
		alm.Serve(port, reg)
	}

	// scripts initialization
	for _, file := range imports {
		fmt.Println("Loading " + file + " ...")
		if _, err := alm.Invoke(IOEnv.Vars["import"], []alm.Term{alm.NewString(file)}, IOEnv); err != nil {
			alm.PrintError(err.Error())
			os.Exit(1)
		}
	}
	for _, command := range commands {
		result, err := alm.EvalAll("command line", command, IOEnv)
		if err != nil {
			alm.PrintError(err.Error())
			os.Exit(1)
		}
		fmt.Println(result.String())
	}

	// install exit handler
	cancelChan := make(chan os.Signal, 1)
	signal.Notify(cancelChan, syscall.SIGTERM, syscall.SIGINT)
	go (func () {
		<-cancelChan
		exitroutine()
		os.Exit(1)
	})()

	// init profiling
	if profile != "" {
		f, err := os.Create(profile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	// start cron
	go cronroutine()

	batch := len(imports) > 0 || len(commands) > 0
	if !batch || repl {
		fmt.Print(`almostlisp Copyright (C) 2026   Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

    Type (help) to show help

`)
		// REPL shell
		alm.Repl(IOEnv)
	} else if port != 0 {
		select {} // endpoint only; serve until a signal arrives
	}

	// normal shutdown
	exitroutine()
}

var exitsignal chan bool = make(chan bool, 1) // set true to start shutdown routine and wait for all jobs
var exitable sync.WaitGroup
func cronroutine() {
	exitable.Add(1)
	for {
		// wait first
		select {
			case <- exitsignal:
				// almostlisp is about to exit; confirm the waitgroup and exit
				exitable.Done()
				return
			case <- time.After(time.Minute * 15): // report engine counters all 15 minutes
				// continue
		}

		fmt.Println("engine stats: " + statsLine())
	}
}

func exitroutine() {
	exitsignal <- true
	exitable.Wait()
	fmt.Println("Exit procedure...")
	if alm.ReplInstance != nil {
		// in case it doesn't exit properly
		alm.ReplInstance.Close()
	}
	alm.SetTrace(false) // flush and close the trace file
	fmt.Println("Exit procedure finished")
}
