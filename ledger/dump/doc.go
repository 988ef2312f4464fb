/*
Package dump provides I/O operations for collected states of the ledger
programs.

State collection allows you to inspect or reproduce ledger state: program
accounts along with all accounts they own. The package works with dumps stored
in the file system using human-readable encoding.
*/
package dump
