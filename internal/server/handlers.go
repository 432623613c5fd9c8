package server

import (
	"fmt"
	"net/http"
)

// handleWebSocket upgrades the request and hands the connection to the hub,
// which starts its pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(s.log, conn, s.hub, r.RemoteAddr, s.cfg)
	if !s.hub.Register(client) {
		s.log.Info("Refusing connection during shutdown", "remote_addr", r.RemoteAddr)
		_ = conn.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "duochat server is running!")
}

// handleTestPage serves a page that registers a user id and sends messages
// to another one over the WebSocket endpoint.
func (s *Server) handleTestPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPage); err != nil {
		s.log.Warn("Error writing HTML response", "error", err)
	}
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>duochat WebSocket Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #log { border: 1px solid #ccc; height: 300px; padding: 10px; overflow-y: scroll; margin: 10px 0; background-color: #f9f9f9; }
        #online { margin: 10px 0; color: #555; }
        input[type="text"] { width: 220px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        button:disabled { background-color: #999; }
        .status { margin: 10px 0; padding: 5px; border-radius: 3px; }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
    <h1>duochat WebSocket Test</h1>

    <div id="status" class="status disconnected">Disconnected</div>

    <div>
        <input type="text" id="userId" placeholder="Your user id">
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
    </div>
    <div id="online">Online: nobody</div>
    <div>
        <input type="text" id="receiverId" placeholder="Receiver user id" disabled>
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
    </div>

    <div id="log"></div>

    <script>
        let ws = null;
        const logDiv = document.getElementById('log');
        const userInput = document.getElementById('userId');
        const receiverInput = document.getElementById('receiverId');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const connectButton = document.getElementById('connectButton');
        const statusDiv = document.getElementById('status');
        const onlineDiv = document.getElementById('online');

        function addLine(text, color) {
            const line = document.createElement('div');
            line.style.margin = '5px 0';
            line.style.color = color || 'gray';
            line.textContent = text;
            logDiv.appendChild(line);
            logDiv.scrollTop = logDiv.scrollHeight;
        }

        function updateStatus(connected) {
            statusDiv.textContent = connected ? 'Connected' : 'Disconnected';
            statusDiv.className = 'status ' + (connected ? 'connected' : 'disconnected');
            receiverInput.disabled = !connected;
            messageInput.disabled = !connected;
            sendButton.disabled = !connected;
            userInput.disabled = connected;
            connectButton.textContent = connected ? 'Disconnect' : 'Connect';
        }

        function connect() {
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/ws');

            ws.onopen = function() {
                ws.send(JSON.stringify({event: 'addUser', data: userInput.value.trim()}));
                addLine('Connected as ' + userInput.value.trim());
                updateStatus(true);
            };

            ws.onmessage = function(event) {
                const frame = JSON.parse(event.data);
                if (frame.event === 'getUsers') {
                    const ids = (frame.data || []).map(function(u) { return u.userId; });
                    onlineDiv.textContent = 'Online: ' + (ids.length ? ids.join(', ') : 'nobody');
                } else if (frame.event === 'getMessage') {
                    const d = frame.data;
                    const mine = d.senderId === userInput.value.trim();
                    addLine((mine ? 'You' : d.user.fullName || d.senderId) + ': ' + d.message, mine ? 'blue' : 'green');
                } else if (frame.event === 'error') {
                    addLine('Error (' + frame.data.command + '): ' + frame.data.message, 'red');
                }
            };

            ws.onclose = function() {
                addLine('Connection closed');
                updateStatus(false);
                ws = null;
            };
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({event: 'disconnect'}));
            } else if (userInput.value.trim()) {
                connect();
            }
        }

        function sendMessage() {
            const message = messageInput.value.trim();
            if (message && ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({event: 'sendMessage', data: {
                    senderId: userInput.value.trim(),
                    receiverId: receiverInput.value.trim(),
                    message: message,
                    conversationId: 'new'
                }}));
                messageInput.value = '';
            }
        }

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') {
                sendMessage();
            }
        });
    </script>
</body>
</html>`
