// Package git wraps the git command line for the packager: enumerating
// version refs, switching the working tree between them and exporting a
// compressed snapshot of each with git archive.
package git
