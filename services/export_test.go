// file: services/export_test.go
package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athproof/models"
)

func sampleAthletes() []models.Athlete {
	return []models.Athlete{
		{
			AthleteID: "ID-26-100001", FirstName: "Ada", LastName: "Lovelace",
			Sport: "Tennis", Gender: "Female", DOB: "2012-05-01",
			ParentPhone: "0800-000-001", HomeAddress: "12 Palm Road",
		},
		{
			AthleteID: "ID-26-100002", FirstName: "Sam", MiddleName: "O", LastName: "Okafor",
			Sport: "Football", Gender: "Male", DOB: "2010-09-14",
			ParentPhone: "0800-000-002", HomeAddress: "3 Stadium Close",
		},
	}
}

// Test: CSV export carries the header row plus one upper-cased row per athlete
func TestRegistryCSV(t *testing.T) {
	data, err := RegistryCSV(sampleAthletes())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, registryHeader, records[0])
	assert.Equal(t, []string{
		"001", "ID-26-100001", "ADA LOVELACE", "TENNIS", "FEMALE",
		"2012-05-01", "0800-000-001", "12 PALM ROAD",
	}, records[1])
	assert.Equal(t, "002", records[2][0])
	assert.Equal(t, "SAM O OKAFOR", records[2][2])
}

func TestRegistryCSV_Empty(t *testing.T) {
	data, err := RegistryCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// Test: PDF exports produce valid PDF documents
func TestRegistryPDF(t *testing.T) {
	data, err := RegistryPDF(sampleAthletes())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "expected a PDF header")
}

func TestIDCard(t *testing.T) {
	a := sampleAthletes()[0]
	a.Category = "U-16"

	data, err := IDCard(a, "http://localhost:8080/verify/"+a.AthleteID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "expected a PDF header")
}

// Test: an unreadable stored photo degrades to a card without a portrait
func TestIDCard_BadPhotoStillRenders(t *testing.T) {
	a := sampleAthletes()[0]
	a.Photo = "data:image/jpeg;base64,%%%broken%%%"

	data, err := IDCard(a, "")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
