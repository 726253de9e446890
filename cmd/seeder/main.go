// Seeder populates the database with demo users, teams, assets and
// maintenance requests. Incoming status vocabularies from older exports are
// normalized to the canonical underscore form before anything is written.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/gearguard/gearguard/internal/auth"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/models"
)

// legacyStatuses maps the status vocabularies seen in older exports onto the
// canonical values. Seeding is the only place these spellings are accepted.
var legacyStatuses = map[string]models.Status{
	"new":         models.StatusPending,
	"open":        models.StatusPending,
	"assigned":    models.StatusAssigned,
	"in-progress": models.StatusInProgress,
	"on-hold":     models.StatusOnHold,
	"repaired":    models.StatusCompleted,
	"done":        models.StatusCompleted,
	"closed":      models.StatusCancelled,
}

func normalizeLegacyStatus(raw string) models.Status {
	if mapped, ok := legacyStatuses[raw]; ok {
		return mapped
	}
	normalized := models.NormalizeStatus(raw)
	if models.IsValidStatus(normalized) {
		return normalized
	}
	return models.StatusPending
}

var teamSeeds = []models.Team{
	{Name: "Mechanical", Specialization: "mechanical", Description: "Pumps, presses and conveyors", Color: "#2563eb"},
	{Name: "Electrical", Specialization: "electrical", Description: "Panels, drives and wiring", Color: "#f59e0b"},
	{Name: "Facilities", Specialization: "facilities", Description: "HVAC and building systems", Color: "#10b981"},
}

var assetSeeds = []models.Asset{
	{Name: "Hydraulic Press A", Category: "machinery", Location: "Hall 1"},
	{Name: "CNC Mill 3", Category: "machinery", Location: "Hall 1"},
	{Name: "Conveyor Line B", Category: "machinery", Location: "Hall 2"},
	{Name: "Air Compressor 2", Category: "utilities", Location: "Basement"},
	{Name: "HVAC Unit North", Category: "facilities", Location: "Roof"},
	{Name: "Forklift 7", Category: "vehicles", Location: "Warehouse"},
	{Name: "Backup Generator", Category: "utilities", Location: "Basement"},
	{Name: "Packaging Robot", Category: "machinery", Location: "Hall 2"},
}

var requestTypes = []models.RequestType{
	models.TypeCorrective, models.TypePreventive, models.TypeRepair,
	models.TypeMaintenance, models.TypeInspection,
}

var priorities = []models.Priority{
	models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical,
}

// rawStatuses deliberately mixes canonical and legacy spellings so seeding
// exercises the normalization path.
var rawStatuses = []string{
	"pending", "pending", "new", "assigned", "in-progress",
	"in_progress", "on-hold", "completed", "repaired", "cancelled",
}

func main() {
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded configuration from .env")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	collections := db.NewCollections(client)

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	teamIDs := seedTeams(ctx, collections)
	userIDs := seedUsers(ctx, collections, authService, teamIDs)
	assetIDs := seedAssets(ctx, collections, teamIDs)
	seedRequests(ctx, collections, userIDs, teamIDs, assetIDs)

	log.Info("Seeding complete")
}

func seedTeams(ctx context.Context, collections *db.Collections) []string {
	ids := make([]string, 0, len(teamSeeds))
	for _, team := range teamSeeds {
		id, err := collections.Teams.InsertTeam(ctx, team)
		if err != nil {
			log.WithError(err).WithField("team", team.Name).Fatal("Failed to seed team")
		}
		ids = append(ids, id)
	}
	log.WithField("count", len(ids)).Info("Seeded teams")
	return ids
}

func seedUsers(ctx context.Context, collections *db.Collections, authService *auth.Service, teamIDs []string) map[models.Role][]string {
	hash, err := authService.HashPassword("password123")
	if err != nil {
		log.WithError(err).Fatal("Failed to hash demo password")
	}

	users := []models.User{
		{Name: "Demo Employee", Email: "demo.employee@gearguard.com", Role: models.RoleEmployee, Department: "Production"},
		{Name: "Demo Technician", Email: "demo.technician@gearguard.com", Role: models.RoleTechnician, TeamID: teamIDs[0]},
		{Name: "Demo Manager", Email: "demo.manager@gearguard.com", Role: models.RoleManager},
		{Name: "Priya Raman", Email: "priya.raman@gearguard.com", Role: models.RoleTechnician, TeamID: teamIDs[0]},
		{Name: "Jonas Weber", Email: "jonas.weber@gearguard.com", Role: models.RoleTechnician, TeamID: teamIDs[1]},
		{Name: "Mei Lin", Email: "mei.lin@gearguard.com", Role: models.RoleTechnician, TeamID: teamIDs[2]},
		{Name: "Tom Okafor", Email: "tom.okafor@gearguard.com", Role: models.RoleEmployee, Department: "Logistics"},
		{Name: "Sara Kim", Email: "sara.kim@gearguard.com", Role: models.RoleEmployee, Department: "Assembly"},
	}

	ids := map[models.Role][]string{}
	for _, user := range users {
		user.PasswordHash = hash
		user.IsActive = true
		id, err := collections.Users.InsertUser(ctx, user)
		if err != nil {
			log.WithError(err).WithField("email", user.Email).Fatal("Failed to seed user")
		}
		ids[user.Role] = append(ids[user.Role], id)
	}
	log.WithField("count", len(users)).Info("Seeded users")
	return ids
}

func seedAssets(ctx context.Context, collections *db.Collections, teamIDs []string) []string {
	ids := make([]string, 0, len(assetSeeds))
	for i, asset := range assetSeeds {
		asset.AssetTag = fmt.Sprintf("ASSET-%04d", i+1)
		asset.Status = models.AssetOperational
		asset.TeamID = teamIDs[i%len(teamIDs)]
		id, err := collections.Assets.InsertAsset(ctx, asset)
		if err != nil {
			log.WithError(err).WithField("asset", asset.Name).Fatal("Failed to seed asset")
		}
		ids = append(ids, id)
	}
	log.WithField("count", len(ids)).Info("Seeded assets")
	return ids
}

func seedRequests(ctx context.Context, collections *db.Collections, userIDs map[models.Role][]string, teamIDs, assetIDs []string) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	employees := userIDs[models.RoleEmployee]
	technicians := userIDs[models.RoleTechnician]

	descriptions := []string{
		"Unusual vibration during operation",
		"Oil leak near the main seal",
		"Scheduled quarterly inspection",
		"Control panel shows intermittent fault",
		"Belt wear beyond tolerance",
		"Coolant temperature running high",
	}

	count := 40
	for i := 0; i < count; i++ {
		sequence, err := collections.Counters.Next(ctx, db.RequestNumberSequence)
		if err != nil {
			log.WithError(err).Fatal("Failed to allocate request number")
		}

		created := time.Now().AddDate(0, 0, -rng.Intn(300))
		status := normalizeLegacyStatus(rawStatuses[rng.Intn(len(rawStatuses))])
		request := models.MaintenanceRequest{
			RequestNumber: db.FormatRequestNumber(sequence),
			AssetID:       assetIDs[rng.Intn(len(assetIDs))],
			Type:          requestTypes[rng.Intn(len(requestTypes))],
			Priority:      priorities[rng.Intn(len(priorities))],
			Urgency:       models.UrgencyNormal,
			Description:   descriptions[rng.Intn(len(descriptions))],
			Status:        status,
			RequestedBy:   employees[rng.Intn(len(employees))],
			Comments:      []models.Comment{},
			CreatedAt:     created,
			UpdatedAt:     created,
		}
		request.CreatedBy = request.RequestedBy

		if status != models.StatusPending && status != models.StatusCancelled {
			request.AssignedTo = technicians[rng.Intn(len(technicians))]
			request.AssignedTeamID = teamIDs[rng.Intn(len(teamIDs))]
			assigned := created.Add(time.Duration(1+rng.Intn(48)) * time.Hour)
			request.AssignedAt = &assigned
		}
		if status == models.StatusCompleted {
			completed := created.Add(time.Duration(4+rng.Intn(120)) * time.Hour)
			request.CompletedAt = &completed
			request.CompletionNotes = "Work finished and verified"
		}
		if rng.Intn(2) == 0 {
			scheduled := created.AddDate(0, 0, 1+rng.Intn(14))
			request.ScheduledDate = &scheduled
		}

		if _, err := collections.Requests.InsertRequest(ctx, request); err != nil {
			log.WithError(err).Fatal("Failed to seed maintenance request")
		}
	}
	log.WithField("count", count).Info("Seeded maintenance requests")
}
