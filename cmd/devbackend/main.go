package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sessionresults/internal/config"
	"sessionresults/internal/testkit"
)

func main() {
	_ = godotenv.Load()

	var port string
	rootCmd := &cobra.Command{
		Use:   "devbackend",
		Short: "Serve the demo course on a fake feedback backend",
		Long: `Serve the demo course (CS2103T, "Mid-term Peer Feedback") on the backend endpoints the
results UI talks to. Point BACKEND_URL at it to develop without a real backend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := testkit.NewFakeBackend(testkit.NewCourse(), testkit.WithRequestLogging())
			server := &http.Server{
				Addr:              ":" + port,
				Handler:           backend.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			log.Printf("Fake backend listening on %s", server.Addr)
			return server.ListenAndServe()
		},
	}
	rootCmd.Flags().StringVar(&port, "port", config.LoadDevBackend().Port, "Port to listen on")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
