package wa

import (
	"context"
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/mdp/qrterminal"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	walog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Service struct {
	client         *whatsmeow.Client
	dbBasePath     string
	log            walog.Logger
	logger         *zap.Logger
	messageHandler func(ctx context.Context, client *whatsmeow.Client, evt *events.Message)
}

func NewService(dbBasePath string, logger *zap.Logger) *Service {
	return &Service{
		dbBasePath: dbBasePath,
		log:        NewLogger(logger, "whatsmeow"),
		logger:     logger,
	}
}

func (s *Service) Initialize(ctx context.Context) error {
	// whatsmeow keeps its own connection; WAL sticks to the file once enabled.
	dbAddress := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", s.dbBasePath)
	container, err := sqlstore.New(ctx, "sqlite", dbAddress, s.log.Sub("Database"))
	if err != nil {
		return errors.Annotate(err, "opening session store")
	}

	devices, err := container.GetAllDevices(ctx)
	if err != nil {
		return errors.Annotate(err, "reading device")
	}

	var device *store.Device
	if len(devices) > 0 {
		device = devices[0]
	} else {
		device = container.NewDevice()
	}

	s.client = whatsmeow.NewClient(device, s.log.Sub("Client"))
	s.registerEventHandlers()

	return nil
}

func (s *Service) Connect() error {
	if s.client == nil {
		return errors.New("client not initialized")
	}
	if s.client.IsConnected() {
		return nil
	}
	return s.client.Connect()
}

func (s *Service) Disconnect() {
	if s.client != nil {
		s.client.Disconnect()
	}
}

func (s *Service) SetMessageHandler(handler func(ctx context.Context, client *whatsmeow.Client, evt *events.Message)) {
	s.messageHandler = handler
}

func (s *Service) registerEventHandlers() {
	s.client.AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			if s.messageHandler != nil {
				go s.messageHandler(context.Background(), s.client, v)
			}
		case *events.Connected:
			s.logger.Info("whatsapp connected")
		case *events.Disconnected:
			s.logger.Warn("whatsapp disconnected")
		}
	})
}

func (s *Service) GetClient() *whatsmeow.Client {
	return s.client
}

func (s *Service) IsLoggedIn() bool {
	return s.client.Store.ID != nil
}

// Login connects, pairing by phone code when botPhone is set and by QR code
// otherwise.
func (s *Service) Login(ctx context.Context, botPhone string) error {
	if s.IsLoggedIn() {
		if err := s.Connect(); err != nil {
			return errors.Annotate(err, "connecting")
		}
		s.logger.Info("client is already logged in")
		return nil
	}

	if botPhone == "" {
		s.logger.Info("not logged in and BOT_PHONE not set, printing QR")
		// PrintQR connects after opening the QR channel to avoid missing codes.
		go s.PrintQR(ctx)
		return nil
	}

	if err := s.Connect(); err != nil {
		return errors.Annotate(err, "connecting for pairing")
	}
	code, err := s.Pair(ctx, botPhone)
	if err != nil {
		return errors.Annotate(err, "generating pair code")
	}
	s.logger.Info("pair code generated; link it under Linked Devices > Link with phone number",
		zap.String("phone", botPhone), zap.String("code", code))
	return nil
}

func (s *Service) Pair(ctx context.Context, phone string) (string, error) {
	if s.IsLoggedIn() {
		return "", errors.New("already logged in")
	}
	if !s.client.IsConnected() {
		return "", errors.New("client not connected")
	}
	return s.client.PairPhone(ctx, phone, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
}

func (s *Service) PrintQR(ctx context.Context) {
	if s.client.Store.ID != nil {
		return
	}
	qrChan, _ := s.client.GetQRChannel(ctx)
	if err := s.client.Connect(); err != nil {
		s.logger.Error("failed to connect for QR", zap.Error(err))
		return
	}
	for evt := range qrChan {
		if evt.Event == "code" {
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
		} else {
			s.logger.Info("login event", zap.String("event", evt.Event))
		}
	}
}
