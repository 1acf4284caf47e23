package main

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"skypark/internal/pkg/bootstrap"
	"skypark/internal/pkg/logger"
	admissioninfra "skypark/internal/service/admission/infrastructure"
	scoringinfra "skypark/internal/service/scoring/infrastructure"
)

// 往数据库写入一套演示数据：几个设施、两位游客、当日门票和一场晚间活动。
func main() {
	bootstrap.Init()
	logger.Init("seed")
	cfg := bootstrap.GetCurrentConfig()

	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := db.AutoMigrate(
		&scoringinfra.StrategyModel{},
		&admissioninfra.AttractionModel{},
		&admissioninfra.VisitorModel{},
		&admissioninfra.TicketModel{},
		&admissioninfra.EventModel{},
		&admissioninfra.VisitModel{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to migrate database schema")
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	attractions := []admissioninfra.AttractionModel{
		{Name: "Sky Screamer", Type: "ROLLER_COASTER", Capacity: 30, MinAge: 12, BasePoints: 100},
		{Name: "Splash Canyon", Type: "WATER_RIDE", Capacity: 20, MinAge: 8, BasePoints: 80},
		{Name: "Carousel Royale", Type: "FAMILY", Capacity: 40, MinAge: 0, BasePoints: 40},
		{Name: "Ghost Manor", Type: "DARK_RIDE", Capacity: 25, MinAge: 10, BasePoints: 90},
	}
	for _, a := range attractions {
		if err := db.Where("name = ?", a.Name).FirstOrCreate(&a).Error; err != nil {
			logger.Logger.Fatal().Err(err).Str("attraction", a.Name).Msg("failed to seed attraction")
		}
	}

	visitors := []admissioninfra.VisitorModel{
		{VisitorID: uuid.New().String(), Name: "Alice", TagCode: "TAG-0001", BirthDate: time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC)},
		{VisitorID: uuid.New().String(), Name: "Bob", TagCode: "TAG-0002", BirthDate: time.Date(2015, 9, 30, 0, 0, 0, 0, time.UTC)},
	}
	for i := range visitors {
		var existing admissioninfra.VisitorModel
		err := db.Where("tag_code = ?", visitors[i].TagCode).First(&existing).Error
		if err == nil {
			visitors[i] = existing
			continue
		}
		if err != gorm.ErrRecordNotFound {
			logger.Logger.Fatal().Err(err).Msg("failed to query visitor")
		}
		if err := db.Create(&visitors[i]).Error; err != nil {
			logger.Logger.Fatal().Err(err).Str("visitor", visitors[i].Name).Msg("failed to seed visitor")
		}
	}

	event := admissioninfra.EventModel{
		Name:        "Night Lights Parade",
		Date:        today,
		StartTime:   today.Add(18 * time.Hour),
		Capacity:    200,
		Attractions: "Sky Screamer,Ghost Manor",
	}
	if err := db.Where("name = ?", event.Name).FirstOrCreate(&event).Error; err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to seed event")
	}

	tickets := []admissioninfra.TicketModel{
		{QRCode: uuid.New().String(), Kind: "GENERAL", VisitDate: today, VisitorID: visitors[0].VisitorID, PurchasedAt: now.Add(-48 * time.Hour)},
		{QRCode: uuid.New().String(), Kind: "EVENT", VisitDate: today, VisitorID: visitors[0].VisitorID, EventName: event.Name, PurchasedAt: now.Add(-24 * time.Hour)},
		{QRCode: uuid.New().String(), Kind: "GENERAL", VisitDate: today, VisitorID: visitors[1].VisitorID, PurchasedAt: now.Add(-12 * time.Hour)},
	}
	for _, t := range tickets {
		if err := db.Where("qr_code = ?", t.QRCode).FirstOrCreate(&t).Error; err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to seed ticket")
		}
		logger.Logger.Info().Str("qr", t.QRCode).Str("kind", t.Kind).Msg("ticket seeded")
	}

	logger.Logger.Info().Msg("seed data written")
}
