package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/hitoshi/innman/internal/model"
	"github.com/hitoshi/innman/internal/security"
)

// Client はGatewayインターフェースのHTTP実装。
// ベースURLはゲートウェイのAPIプレフィックスまで含む
// （例: http://192.168.4.28:5003/api）。
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	metrics    MetricsRecorder
	logger     *slog.Logger
}

// NewClient はClientを生成する。
// tokensとmetricsはnil可。tokensが与えられ、かつトークンが発行済みの
// 場合のみAuthorizationヘッダーを添付する。
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource, metrics MetricsRecorder, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		metrics:    metrics,
		logger:     logger,
	}
}

// --- ワイヤフォーマット ---
// フィールド名はゲートウェイの既存コントラクトに従う。

type roomDTO struct {
	ID            string  `json:"_id"`
	RoomNumber    string  `json:"roomNumber"`
	Disponibility bool    `json:"disponibility"`
	Type          string  `json:"type"`
	Loyer         float64 `json:"loyer"`
	ImageRoom     string  `json:"imageRoom"`
}

type customerDTO struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}

type bedRoomDTO struct {
	RoomNumber string  `json:"roomNumber"`
	Type       string  `json:"type"`
	Loyer      float64 `json:"loyer"`
}

type reservationDTO struct {
	ID              string      `json:"_id"`
	Customer        customerDTO `json:"customer"`
	BedRoom         bedRoomDTO  `json:"bedRoom"`
	StartDate       time.Time   `json:"startDate"`
	EndDate         time.Time   `json:"endDate"`
	PaymentAmount   float64     `json:"paymentAmount"`
	PaymentStatus   string      `json:"paymentStatus"`
	PaymentMethod   string      `json:"paymentMethod"`
	ReservationDate time.Time   `json:"reservationDate"`
}

type updateReservationRequest struct {
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	PaymentAmount float64   `json:"paymentAmount"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentMethod string    `json:"paymentMethod"`
	CustomerEmail string    `json:"customerEmail"`
	RoomNumber    string    `json:"roomNumber"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type createAdminRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Telephone string `json:"telephone"`
}

// toRoom はワイヤレコードをドメインモデルに変換する。
// 自由記述フィールドはキャッシュに入る前にマークアップを除去する。
func toRoom(dto roomDTO) model.Room {
	return model.Room{
		ID:          dto.ID,
		RoomNumber:  strings.TrimSpace(dto.RoomNumber),
		RoomType:    security.StripMarkup(dto.Type),
		MonthlyRent: dto.Loyer,
		Available:   dto.Disponibility,
		PhotoURL:    dto.ImageRoom,
	}
}

// toReservation はワイヤレコードをドメインモデルに変換する。
func toReservation(dto reservationDTO) model.Reservation {
	return model.Reservation{
		ID: dto.ID,
		Customer: model.Customer{
			ID:        dto.Customer.ID,
			Name:      security.StripMarkup(dto.Customer.Name),
			Email:     strings.TrimSpace(dto.Customer.Email),
			Telephone: strings.TrimSpace(dto.Customer.Telephone),
		},
		Room: model.RoomSnapshot{
			RoomNumber:  strings.TrimSpace(dto.BedRoom.RoomNumber),
			RoomType:    security.StripMarkup(dto.BedRoom.Type),
			MonthlyRent: dto.BedRoom.Loyer,
		},
		StartDate:       dto.StartDate,
		EndDate:         dto.EndDate,
		PaymentAmount:   dto.PaymentAmount,
		PaymentStatus:   model.PaymentStatus(dto.PaymentStatus),
		PaymentMethod:   model.PaymentMethod(dto.PaymentMethod),
		ReservationDate: dto.ReservationDate,
	}
}

// --- Gateway実装 ---

// ListRooms は全客室を取得する。
func (c *Client) ListRooms(ctx context.Context) ([]model.Room, error) {
	resp, err := c.send(ctx, "list_rooms", http.MethodGet, "/getAllBedroom", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("list_rooms", resp.StatusCode)
	}

	var dtos []roomDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, c.parseError("list_rooms", err)
	}

	rooms := make([]model.Room, 0, len(dtos))
	for _, dto := range dtos {
		rooms = append(rooms, toRoom(dto))
	}
	return rooms, nil
}

// CreateRoom は客室をマルチパートで作成する。
func (c *Client) CreateRoom(ctx context.Context, payload RoomPayload) (*model.Room, error) {
	body, contentType, err := encodeRoomMultipart(payload)
	if err != nil {
		return nil, c.parseError("create_room", err)
	}

	resp, err := c.send(ctx, "create_room", http.MethodPost, "/createBedRoom", body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError("create_room", resp.StatusCode)
	}

	var dto roomDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, c.parseError("create_room", err)
	}
	room := toRoom(dto)
	return &room, nil
}

// UpdateRoom は客室をマルチパートで更新する。
func (c *Client) UpdateRoom(ctx context.Context, id string, payload RoomPayload) (*model.Room, error) {
	body, contentType, err := encodeRoomMultipart(payload)
	if err != nil {
		return nil, c.parseError("update_room", err)
	}

	resp, err := c.send(ctx, "update_room", http.MethodPut, "/updBedroom/"+id, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, model.NewRoomNotFoundError(id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError("update_room", resp.StatusCode)
	}

	var dto roomDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, c.parseError("update_room", err)
	}
	room := toRoom(dto)
	return &room, nil
}

// DeleteRoom は客室を削除する。
func (c *Client) DeleteRoom(ctx context.Context, id string) error {
	resp, err := c.send(ctx, "delete_room", http.MethodDelete, "/deleteBedroom/"+id, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.NewRoomNotFoundError(id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError("delete_room", resp.StatusCode)
	}
	return nil
}

// ListReservations は全予約を取得する。
func (c *Client) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	resp, err := c.send(ctx, "list_reservations", http.MethodGet, "/getAllReservations", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("list_reservations", resp.StatusCode)
	}

	var dtos []reservationDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, c.parseError("list_reservations", err)
	}

	reservations := make([]model.Reservation, 0, len(dtos))
	for _, dto := range dtos {
		reservations = append(reservations, toReservation(dto))
	}
	return reservations, nil
}

// UpdateReservation は予約をJSONで更新する。
func (c *Client) UpdateReservation(ctx context.Context, id string, payload ReservationPayload) (*model.Reservation, error) {
	reqBody, err := json.Marshal(updateReservationRequest{
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
		PaymentAmount: payload.PaymentAmount,
		PaymentStatus: string(payload.PaymentStatus),
		PaymentMethod: string(payload.PaymentMethod),
		CustomerEmail: payload.CustomerEmail,
		RoomNumber:    payload.RoomNumber,
	})
	if err != nil {
		return nil, c.parseError("update_reservation", err)
	}

	resp, err := c.send(ctx, "update_reservation", http.MethodPut, "/updReservation/"+id, bytes.NewReader(reqBody), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, model.NewReservationNotFoundError(id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError("update_reservation", resp.StatusCode)
	}

	var dto reservationDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, c.parseError("update_reservation", err)
	}
	reservation := toReservation(dto)
	return &reservation, nil
}

// DeleteReservation は予約を削除する。
func (c *Client) DeleteReservation(ctx context.Context, id string) error {
	resp, err := c.send(ctx, "delete_reservation", http.MethodDelete, "/deleteReservation/"+id, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.NewReservationNotFoundError(id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError("delete_reservation", resp.StatusCode)
	}
	return nil
}

// Login は認証を行い、不透明なトークンを返す。
// 401はUNAUTHORIZEDにマップする。200でもトークンが空の場合は
// 認証失敗として扱う（ゲートウェイの既知の挙動）。
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	reqBody, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", c.parseError("login", err)
	}

	resp, err := c.send(ctx, "login", http.MethodPost, "/loginAdmin", bytes.NewReader(reqBody), "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", model.NewUnauthorizedError()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.statusError("login", resp.StatusCode)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", c.parseError("login", err)
	}
	if lr.Token == "" {
		return "", model.NewUnauthorizedError()
	}
	return lr.Token, nil
}

// CreateAdmin は管理者アカウントを登録する。
func (c *Client) CreateAdmin(ctx context.Context, payload AdminPayload) error {
	reqBody, err := json.Marshal(createAdminRequest{
		Name:      payload.Name,
		Email:     payload.Email,
		Password:  payload.Password,
		Telephone: payload.Telephone,
	})
	if err != nil {
		return c.parseError("create_admin", err)
	}

	resp, err := c.send(ctx, "create_admin", http.MethodPost, "/createAdmin", bytes.NewReader(reqBody), "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError("create_admin", resp.StatusCode)
	}
	return nil
}

// --- 内部ヘルパー ---

// send はリクエストを構築・送信し、トランスポート失敗を統一エラーに
// マップする。認証トークンが発行済みの場合はBearerとして添付する。
// レスポンスのクローズは呼び出し側の責任。
func (c *Client) send(ctx context.Context, operation, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, model.NewGatewayUnavailableError(fmt.Sprintf("リクエスト作成に失敗: %s", err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("ゲートウェイへのリクエストに失敗しました",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		if c.metrics != nil {
			c.metrics.RecordGatewayFailure(operation)
		}
		return nil, model.NewGatewayUnavailableError(err.Error())
	}

	if c.metrics != nil {
		c.metrics.RecordGatewayCall(operation, resp.StatusCode, duration)
	}
	return resp, nil
}

// statusError は非2xxレスポンスを統一エラーにマップする。
func (c *Client) statusError(operation string, statusCode int) error {
	c.logger.Warn("ゲートウェイがエラーステータスを返しました",
		slog.String("operation", operation),
		slog.Int("status", statusCode),
	)
	return model.NewGatewayUnavailableError(fmt.Sprintf("%s が HTTP %d を返しました", operation, statusCode))
}

// parseError はエンコード・デコード失敗を統一エラーにマップする。
func (c *Client) parseError(operation string, err error) error {
	c.logger.Error("ゲートウェイレスポンスの解析に失敗しました",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	return model.NewGatewayUnavailableError(fmt.Sprintf("%s のレスポンスを解釈できません", operation))
}

// encodeRoomMultipart は客室ペイロードをマルチパートボディに変換する。
// disponibilityはワイヤ上では文字列の "true"/"false" で表現される。
func encodeRoomMultipart(payload RoomPayload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"roomNumber":    payload.RoomNumber,
		"disponibility": fmt.Sprintf("%t", payload.Available),
		"type":          payload.RoomType,
		"loyer":         payload.MonthlyRent,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if payload.Photo != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="imageRoom"; filename=%q`, payload.Photo.FileName))
		header.Set("Content-Type", payload.Photo.ContentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(payload.Photo.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
