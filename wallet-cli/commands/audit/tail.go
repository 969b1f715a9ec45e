package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/wallet-api/iac"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/base"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/conf"
)

// Tail prints audit events from the configured topic, one json object per line, until
// interrupted. A non-empty eventType keeps only events of that type.
func Tail(groupID, eventType string) {
	conf.InitConfig()
	l := base.Logger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if groupID == "" {
		groupID = conf.C.Kafka.GroupID
	}
	sub := iac.NewSubscriber(conf.C.Kafka.Brokers, conf.C.Kafka.Topic, groupID, l)
	err := sub.Subscribe(ctx, func(e events.Event) {
		if eventType != "" && e.Type != eventType {
			return
		}
		line, err := json.Marshal(e)
		if err != nil {
			return
		}
		fmt.Println(string(line))
	})
	if err != nil {
		panic(err)
	}
}
