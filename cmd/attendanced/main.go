/*
main.go - Application entry point

PURPOSE:
  Starts the attendance engine CLI. All behavior lives in the cobra
  commands; see root.go for the command tree.

SEE ALSO:
  - serve.go: HTTP server startup and graceful shutdown
  - config/config.go: Environment configuration
*/
package main

func main() {
	Execute()
}
