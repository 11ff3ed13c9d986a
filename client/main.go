package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/oddroll/logger"
	"github.com/wfunc/oddroll/network"
)

const usage = `commands:
  join <room> <name> [capacity]
  start | roll | next | state | leave
  shoot <playerId> <box>
  quit`

// writeMutex serializes writers; gorilla allows one concurrent writer.
var writeMutex sync.Mutex

// send frames a JSON payload and writes it to the server.
func send(c *websocket.Conn, msgID uint16, payload any) error {
	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return err
		}
	}
	packet, err := network.EncodeFrame(msgID, data)
	if err != nil {
		return err
	}

	writeMutex.Lock()
	defer writeMutex.Unlock()
	return c.WriteMessage(websocket.BinaryMessage, packet)
}

// command turns one input line into a message.
func command(line string) (uint16, any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil, fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "join":
		if len(fields) < 3 {
			return 0, nil, fmt.Errorf("usage: join <room> <name> [capacity]")
		}
		req := map[string]any{"roomKey": fields[1], "playerName": fields[2]}
		if len(fields) > 3 {
			capacity, err := strconv.Atoi(fields[3])
			if err != nil {
				return 0, nil, fmt.Errorf("bad capacity %q", fields[3])
			}
			req["capacity"] = capacity
		}
		return network.MsgTypeJoinRoom, req, nil
	case "shoot":
		if len(fields) != 3 {
			return 0, nil, fmt.Errorf("usage: shoot <playerId> <box>")
		}
		box, err := strconv.Atoi(fields[2])
		if err != nil {
			return 0, nil, fmt.Errorf("bad box %q", fields[2])
		}
		return network.MsgTypeShootPlayer, map[string]any{"targetId": fields[1], "disableNumber": box}, nil
	case "start":
		return network.MsgTypeStartGame, nil, nil
	case "roll":
		return network.MsgTypeRollDice, nil, nil
	case "next":
		return network.MsgTypeNextTurn, nil, nil
	case "state":
		return network.MsgTypeGetGameState, nil, nil
	case "leave":
		return network.MsgTypeLeaveRoom, nil, nil
	}
	return 0, nil, fmt.Errorf("unknown command %q", fields[0])
}

func main() {
	addr := flag.String("addr", "localhost:3000", "game server address")
	flag.Parse()

	logger.Init(true)
	defer logger.Sync()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	logger.Log.Infof("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				logger.Log.Infof("Read error: %v", err)
				return
			}
			packet, err := network.DecodeFrame(message)
			if err != nil {
				logger.Log.Warnf("Received invalid packet of size %d", len(message))
				continue
			}
			fmt.Printf("<- %s: %s\n", network.MsgName(packet.MsgID), packet.Data)
		}
	}()

	// Heartbeats keep the session clear of the idle reaper.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := send(c, network.MsgTypeHeartbeat, nil); err != nil {
					logger.Log.Warnf("heartbeat: %v", err)
				}
			}
		}
	}()

	fmt.Println(usage)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			logger.Log.Info("Interrupt received, closing connection.")
			writeMutex.Lock()
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			writeMutex.Unlock()
			if err != nil {
				logger.Log.Warnf("Write close error: %v", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "quit" {
				return
			}
			msgID, payload, err := command(line)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := send(c, msgID, payload); err != nil {
				logger.Log.Errorf("Write error: %v", err)
				return
			}
		}
	}
}
