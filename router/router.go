package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	agentHandler "seeksy/internal/agent"
	agentRepo "seeksy/internal/agent/repository"
	agentService "seeksy/internal/agent/service"
	campaignHandler "seeksy/internal/campaign"
	campaignRepo "seeksy/internal/campaign/repository"
	campaignService "seeksy/internal/campaign/service"
	clipHandler "seeksy/internal/clip"
	clipRepo "seeksy/internal/clip/repository"
	clipService "seeksy/internal/clip/service"
	forecastHandler "seeksy/internal/forecast"
	forecastRepo "seeksy/internal/forecast/repository"
	forecastService "seeksy/internal/forecast/service"
	milestoneHandler "seeksy/internal/milestone"
	milestoneRepo "seeksy/internal/milestone/repository"
	milestoneService "seeksy/internal/milestone/service"
	proposalHandler "seeksy/internal/proposal"
	proposalRepo "seeksy/internal/proposal/repository"
	proposalService "seeksy/internal/proposal/service"
	ticketHandler "seeksy/internal/ticket"
	ticketRepo "seeksy/internal/ticket/repository"
	ticketService "seeksy/internal/ticket/service"
	transcriptHandler "seeksy/internal/transcript"
	transcriptRepo "seeksy/internal/transcript/repository"
	transcriptService "seeksy/internal/transcript/service"
	uploadHandler "seeksy/internal/upload"
	uploadService "seeksy/internal/upload/service"
	"seeksy/middleware"
	"seeksy/pkg/ai"
	"seeksy/pkg/mailer"
	"seeksy/pkg/render"
	"seeksy/pkg/respond"
	"seeksy/pkg/speech"
	"seeksy/pkg/storage"
	"seeksy/socket"
)

// Deps are the shared resources every domain is built from.
type Deps struct {
	DB      *sql.DB
	Hub     *socket.Hub
	AI      *ai.Client
	Speech  *speech.Client
	Render  *render.Client
	Mailer  *mailer.Client
	Storage *storage.Client

	RenderCallbackURL  string
	RenderWebhookToken string
}

// Services holds one service per domain. main keeps a reference to start
// background workers.
type Services struct {
	DB          *sql.DB
	Hub         *socket.Hub
	Tickets     *ticketService.TicketService
	Campaigns   *campaignService.CampaignService
	Milestones  *milestoneService.MilestoneService
	Proposals   *proposalService.ProposalService
	Forecasts   *forecastService.ForecastService
	Transcripts *transcriptService.TranscriptService
	Clips       *clipService.ClipService
	Agent       *agentService.AgentService
	Uploads     *uploadService.UploadService
}

func NewServices(d Deps) *Services {
	transcripts := transcriptService.NewTranscriptService(transcriptRepo.NewTranscriptRepository(d.DB), d.Speech, d.Hub)
	return &Services{
		DB:          d.DB,
		Hub:         d.Hub,
		Tickets:     ticketService.NewTicketService(ticketRepo.NewTicketRepository(d.DB), d.Hub),
		Campaigns:   campaignService.NewCampaignService(campaignRepo.NewCampaignRepository(d.DB), d.Mailer, d.Hub),
		Milestones:  milestoneService.NewMilestoneService(milestoneRepo.NewMilestoneRepository(d.DB), d.AI),
		Proposals:   proposalService.NewProposalService(proposalRepo.NewProposalRepository(d.DB), d.Mailer, d.Hub),
		Forecasts:   forecastService.NewForecastService(forecastRepo.NewForecastRepository(d.DB), d.AI),
		Transcripts: transcripts,
		Clips: clipService.NewClipService(clipRepo.NewClipRepository(d.DB), d.Render, transcripts, d.Hub,
			d.RenderCallbackURL, d.RenderWebhookToken),
		Agent:   agentService.NewAgentService(agentRepo.NewMessageRepository(d.DB), d.AI),
		Uploads: uploadService.NewUploadService(d.Storage),
	}
}

func Setup(s *Services, jwtSecret string, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.Auth(jwtSecret)

	// WebSocket
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middleware.UserIDKey).(string)
		socket.ServeWs(s.Hub, w, r, userID)
	})
	mux.Handle("/ws", auth(wsHandler))
	mux.HandleFunc("/healthz", health(s.DB))

	// Helpdesk
	tickets := ticketHandler.NewTicketHandler(s.Tickets)
	mux.Handle("/api/tickets", auth(http.HandlerFunc(tickets.GetTickets)))
	mux.Handle("/api/tickets/create", auth(http.HandlerFunc(tickets.CreateTicket)))
	mux.Handle("/api/tickets/get", auth(http.HandlerFunc(tickets.GetTicket)))
	mux.Handle("/api/tickets/update", auth(http.HandlerFunc(tickets.UpdateTicket)))
	mux.Handle("/api/tickets/delete", auth(http.HandlerFunc(tickets.DeleteTicket)))
	mux.Handle("/api/tickets/comments", auth(http.HandlerFunc(tickets.GetComments)))
	mux.Handle("/api/tickets/comments/add", auth(http.HandlerFunc(tickets.AddComment)))
	mux.Handle("/api/tickets/comments/delete", auth(http.HandlerFunc(tickets.DeleteComment)))

	// Email campaigns
	campaigns := campaignHandler.NewCampaignHandler(s.Campaigns)
	mux.Handle("/api/campaigns", auth(http.HandlerFunc(campaigns.GetCampaigns)))
	mux.Handle("/api/campaigns/create", auth(http.HandlerFunc(campaigns.CreateCampaign)))
	mux.Handle("/api/campaigns/get", auth(http.HandlerFunc(campaigns.GetCampaign)))
	mux.Handle("/api/campaigns/update", auth(http.HandlerFunc(campaigns.UpdateCampaign)))
	mux.Handle("/api/campaigns/delete", auth(http.HandlerFunc(campaigns.DeleteCampaign)))
	mux.Handle("/api/campaigns/send", auth(http.HandlerFunc(campaigns.SendCampaign)))

	// Board milestones
	milestones := milestoneHandler.NewMilestoneHandler(s.Milestones)
	mux.Handle("/api/milestones", auth(http.HandlerFunc(milestones.GetMilestones)))
	mux.Handle("/api/milestones/create", auth(http.HandlerFunc(milestones.CreateMilestone)))
	mux.Handle("/api/milestones/get", auth(http.HandlerFunc(milestones.GetMilestone)))
	mux.Handle("/api/milestones/update", auth(http.HandlerFunc(milestones.UpdateMilestone)))
	mux.Handle("/api/milestones/delete", auth(http.HandlerFunc(milestones.DeleteMilestone)))
	mux.Handle("/api/milestones/notes", auth(http.HandlerFunc(milestones.BoardNotes)))

	// Proposals
	proposals := proposalHandler.NewProposalHandler(s.Proposals)
	mux.Handle("/api/proposals", auth(http.HandlerFunc(proposals.GetProposals)))
	mux.Handle("/api/proposals/create", auth(http.HandlerFunc(proposals.CreateProposal)))
	mux.Handle("/api/proposals/get", auth(http.HandlerFunc(proposals.GetProposal)))
	mux.Handle("/api/proposals/update", auth(http.HandlerFunc(proposals.UpdateProposal)))
	mux.Handle("/api/proposals/status", auth(http.HandlerFunc(proposals.SetProposalStatus)))
	mux.Handle("/api/proposals/delete", auth(http.HandlerFunc(proposals.DeleteProposal)))
	mux.Handle("/api/proposals/send", auth(http.HandlerFunc(proposals.SendProposal)))

	// Pro forma forecasts
	forecasts := forecastHandler.NewForecastHandler(s.Forecasts)
	mux.Handle("POST /api/forecasts", auth(http.HandlerFunc(forecasts.GenerateForecast)))
	mux.Handle("GET /api/forecasts", auth(http.HandlerFunc(forecasts.GetForecasts)))
	mux.Handle("/api/forecasts/get", auth(http.HandlerFunc(forecasts.GetForecast)))
	mux.Handle("/api/forecasts/delete", auth(http.HandlerFunc(forecasts.DeleteForecast)))

	// Transcription and captions
	transcripts := transcriptHandler.NewTranscriptHandler(s.Transcripts)
	mux.Handle("POST /api/transcripts", auth(http.HandlerFunc(transcripts.CreateTranscript)))
	mux.Handle("GET /api/transcripts", auth(http.HandlerFunc(transcripts.GetTranscripts)))
	mux.Handle("/api/transcripts/get", auth(http.HandlerFunc(transcripts.GetTranscript)))
	mux.Handle("/api/transcripts/captions", auth(http.HandlerFunc(transcripts.GetCaptions)))
	mux.Handle("/api/transcripts/delete", auth(http.HandlerFunc(transcripts.DeleteTranscript)))

	// Clip rendering. The webhook is called by the render service and
	// carries a shared token instead of a user JWT.
	clips := clipHandler.NewClipHandler(s.Clips)
	mux.Handle("POST /api/clips", auth(http.HandlerFunc(clips.SubmitClip)))
	mux.Handle("GET /api/clips", auth(http.HandlerFunc(clips.GetClips)))
	mux.Handle("/api/clips/get", auth(http.HandlerFunc(clips.GetClip)))
	mux.Handle("/api/clips/delete", auth(http.HandlerFunc(clips.DeleteClip)))
	mux.HandleFunc("/api/clips/webhook", clips.Webhook)

	// Podcast agent
	agent := agentHandler.NewAgentHandler(s.Agent)
	mux.Handle("/api/agent/chat", auth(http.HandlerFunc(agent.Chat)))
	mux.Handle("/api/agent/history", auth(http.HandlerFunc(agent.History)))
	mux.Handle("/api/agent/seo", auth(http.HandlerFunc(agent.ExplainSEO)))

	// Object storage
	uploads := uploadHandler.NewUploadHandler(s.Uploads)
	mux.Handle("/api/storage/upload", auth(http.HandlerFunc(uploads.Upload)))

	return middleware.RequestLog(middleware.CORS(allowedOrigins)(mux))
}

func health(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		respond.Text(w, http.StatusOK, "OK")
	}
}
