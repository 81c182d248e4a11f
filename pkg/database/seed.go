package database

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	houseClientName     = "BileMo"
	fixtureClients      = 5
	fixtureProducts     = 30
	fixtureMinUsers     = 3
	fixtureMaxUsers     = 15
	fixtureUserPassword = "bilemo-fixture-password"
)

// SuperAdmin holds the credentials of the account created on first start
type SuperAdmin struct {
	Username string
	Password string
	Email    string
}

// Seed creates the house client and the super-admin account if they are missing
func Seed(db *gorm.DB, admin SuperAdmin) error {
	var existing model.User
	err := db.Where("username = ?", admin.Username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	house, err := houseClient(db)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		Username:     admin.Username,
		PhoneNumber:  "0100000000",
		Email:        admin.Email,
		Password:     string(hashedPassword),
		Roles:        []string{constants.RoleSuperAdmin},
		ClientID:     house.ID,
		TokenVersion: 1,
	}

	return db.Omit("Client").Create(&user).Error
}

func houseClient(db *gorm.DB) (*model.Client, error) {
	var client model.Client
	err := db.Where("name = ?", houseClientName).First(&client).Error
	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client = model.Client{
		Name:        houseClientName,
		Address:     "1 avenue de la Republique, 75011 Paris",
		Description: "Operator of the BileMo catalog API",
		PhoneNumber: "0100000000",
	}
	if err := db.Omit("Users").Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// Fixture templates rendered with sprig's text functions
const (
	tplClientName    = `{{ randAlpha 8 | lower | title }} Telecom`
	tplAddress       = `{{ randInt 1 200 }} rue {{ randAlpha 9 | lower | title }}, {{ randNumeric 5 }} Paris`
	tplDescription   = `Reseller of mobile phones since {{ randInt 1990 2024 }}, ref {{ randAlphaNum 10 | upper }}`
	tplPhone         = `0{{ randInt 1 8 }}{{ randNumeric 8 }}`
	tplUserCount     = `{{ randInt 3 16 }}`
	tplUsername      = `{{ randAlpha 6 | lower }}.{{ randNumeric 4 }}`
	tplEmail         = `{{ .Username }}@{{ .Domain }}.example`
	tplProductName   = `{{ randAlpha 5 | upper }} {{ randInt 1 20 }} Pro`
	tplProductDesc   = `Smartphone with a {{ randInt 5 7 }}.{{ randInt 0 9 }} inch screen and {{ randInt 64 513 }} GB storage`
	tplProductPrice  = `{{ randInt 99 999 }}.{{ randNumeric 2 }}`
	tplProductSerial = `SN-{{ randAlphaNum 14 | upper }}`
)

type fixtureRenderer struct {
	templates map[string]*template.Template
}

func newFixtureRenderer() (*fixtureRenderer, error) {
	sources := map[string]string{
		"clientName":    tplClientName,
		"address":       tplAddress,
		"description":   tplDescription,
		"phone":         tplPhone,
		"userCount":     tplUserCount,
		"username":      tplUsername,
		"email":         tplEmail,
		"productName":   tplProductName,
		"productDesc":   tplProductDesc,
		"productPrice":  tplProductPrice,
		"productSerial": tplProductSerial,
	}

	r := &fixtureRenderer{templates: make(map[string]*template.Template, len(sources))}
	for name, src := range sources {
		tpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse fixture template %s: %w", name, err)
		}
		r.templates[name] = tpl
	}
	return r, nil
}

func (r *fixtureRenderer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates[name].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render fixture template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// SeedFixtures fills an empty catalog with demo clients, users and products
func SeedFixtures(db *gorm.DB) error {
	var products int64
	if err := db.Model(&model.Product{}).Count(&products).Error; err != nil {
		return err
	}
	if products > 0 {
		return nil
	}

	r, err := newFixtureRenderer()
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(fixtureUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < fixtureClients; i++ {
			if err := seedFixtureClient(tx, r, string(hashedPassword)); err != nil {
				return err
			}
		}
		for i := 0; i < fixtureProducts; i++ {
			if err := seedFixtureProduct(tx, r); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedFixtureClient(tx *gorm.DB, r *fixtureRenderer, hashedPassword string) error {
	var client model.Client
	var err error

	if client.Name, err = r.render("clientName", nil); err != nil {
		return err
	}
	if client.Address, err = r.render("address", nil); err != nil {
		return err
	}
	if client.Description, err = r.render("description", nil); err != nil {
		return err
	}
	if client.PhoneNumber, err = r.render("phone", nil); err != nil {
		return err
	}
	if err := tx.Omit("Users").Create(&client).Error; err != nil {
		return err
	}

	rawCount, err := r.render("userCount", nil)
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(rawCount)
	if err != nil || count < fixtureMinUsers || count > fixtureMaxUsers {
		return fmt.Errorf("unexpected fixture user count %q", rawCount)
	}

	domain := strings.ToLower(strings.Fields(client.Name)[0])
	for j := 0; j < count; j++ {
		user := model.User{
			Password: hashedPassword,
			ClientID: client.ID,
			Roles:    []string{constants.RoleUser},
		}
		if j == 0 {
			user.Roles = []string{constants.RoleAdmin}
		}
		if user.Username, err = r.render("username", nil); err != nil {
			return err
		}
		if user.PhoneNumber, err = r.render("phone", nil); err != nil {
			return err
		}
		if user.Email, err = r.render("email", map[string]string{"Username": user.Username, "Domain": domain}); err != nil {
			return err
		}
		if err := tx.Omit("Client").Create(&user).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedFixtureProduct(tx *gorm.DB, r *fixtureRenderer) error {
	var product model.Product
	var err error

	if product.Name, err = r.render("productName", nil); err != nil {
		return err
	}
	if product.Description, err = r.render("productDesc", nil); err != nil {
		return err
	}
	if product.SerialNumber, err = r.render("productSerial", nil); err != nil {
		return err
	}
	rawPrice, err := r.render("productPrice", nil)
	if err != nil {
		return err
	}
	if product.Price, err = decimal.NewFromString(rawPrice); err != nil {
		return fmt.Errorf("fixture price %q: %w", rawPrice, err)
	}

	return tx.Create(&product).Error
}
