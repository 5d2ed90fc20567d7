// Command graphnet trains small networks with the graphnet autodiff engine
// and checks its gradients.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"k8s.io/klog/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewCLI().ExecuteContext(ctx)
	klog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
