// Package repl implements the interactive shell of stripedmap-cli.
//
// A REPL reads lines, splits them into arguments (double quotes group
// words) and hands them to an Executor. MapSession is the Executor used by
// the shell command: each line is one operation on an in-process multimap,
// so the behaviour of duplicates, bulk operations and rehashing can be
// explored by hand.
//
// The loop itself handles help, history, complete and exit/quit.
package repl
