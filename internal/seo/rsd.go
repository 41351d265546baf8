// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import "encoding/xml"

// rsdAPI is a single advertised editing API.
type rsdAPI struct {
	Name      string `xml:"name,attr"`
	Preferred string `xml:"preferred,attr"`
	APILink   string `xml:"apilink,attr"`
	BlogID    string `xml:"blogid,attr"`
}

type rsdService struct {
	EngineName   string   `xml:"enginename"`
	EngineLink   string   `xml:"enginelink"`
	HomePageLink string   `xml:"homepagelink"`
	APIs         []rsdAPI `xml:"apis>api"`
}

type rsdDocument struct {
	XMLName xml.Name   `xml:"rsd"`
	Version string     `xml:"version,attr"`
	Service rsdService `xml:"service"`
}

// RSD generates the Really Simple Discovery document advertising the
// MetaWeblog endpoint, so desktop clients can configure themselves from
// the site URL alone. apiLink must be absolute.
func RSD(engineName, siteURL, apiLink, blogID string) ([]byte, error) {
	doc := rsdDocument{
		Version: "1.0",
		Service: rsdService{
			EngineName:   engineName,
			EngineLink:   "https://github.com/olegiv/oblog-go",
			HomePageLink: siteURL,
			APIs: []rsdAPI{{
				Name:      "MetaWeblog",
				Preferred: "true",
				APILink:   apiLink,
				BlogID:    blogID,
			}},
		},
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(output, xmlBytes...), nil
}
